package commands

const (
	_etc = "/usr/local/etc/schedule-sheets"
	_var = "/usr/local/var/schedule-sheets"

	DEFAULT_CONFIG  = _etc + "/schedule-sheets.yaml"
	DEFAULT_WORKDIR = _var
)
