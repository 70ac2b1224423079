package commands

const (
	_etc = "/usr/local/etc/com.github.schedsync"
	_var = "/usr/local/var/com.github.schedsync"

	DEFAULT_CONFIG  = _etc + "/schedule-sheets/schedule-sheets.yaml"
	DEFAULT_WORKDIR = _var + "/schedule-sheets"
)
