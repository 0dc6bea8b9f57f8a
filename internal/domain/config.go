package domain

// ServerConfig maps a guild to its designated drop channel.
// At most one channel per guild; the last setchannel wins.
type ServerConfig map[string]string
