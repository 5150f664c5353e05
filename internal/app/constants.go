package app

const (
	Name                = "vlcrc"
	SourceURL           = "https://git.skobk.in/skobkin/vlcrc"
	ConfigFilename      = "config.json"
	DBFilename          = "history.db"
	LogFilename         = "vlcrc.log"
	PIDFilename         = "vlcrc.pid"
	WriterQueueCapacity = 256
	DefaultHistoryLimit = 20
)
