package journal

const (
	defaultBackend    = BackendMemory
	defaultPath       = "journal"
	defaultRedisAddr  = "127.0.0.1:6379"
	defaultRedisKey   = "metaminer:journal"
	defaultMaxEntries = 10000
)
