/*
Package schedule-sheets publishes the daily competition schedule of the Shenzhen venues.

schedule-sheets can be used from the command line but is really intended to be run from a cron job that
fetches the per-discipline schedules from the games information API, flattens them into a single table
and distributes the next day's schedule as an xlsx file, a Feishu or Google Sheets spreadsheet and mail.

schedule-sheets supports the following commands:

  - sync, to fetch, filter, export and optionally publish and mail the schedule for a day
  - get, to download the aggregated schedule as a TSV file
  - put, to store a TSV file to the remote spreadsheet
  - clear, to blank a sheet of the remote spreadsheet
  - version, to display the current version
*/
package sheets
