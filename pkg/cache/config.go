package cache

type Config struct {
	Addr       string
	Password   string
	DB         int
	Prefix     string
	DefaultTTL int // seconds
}
