package connectors

const (
	TopicConnStatus  = "conn.status"
	TopicConnStats   = "conn.stats"
	TopicConnAttempt = "conn.attempt"
	TopicPlaylist    = "rc.playlist"
	TopicAuthFailed  = "rc.auth_failed"
	TopicCommandOut  = "rc.command.out"
	TopicResponseIn  = "rc.response.in"
)
