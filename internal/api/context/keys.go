package context

type Key string

const (
	Tenant  Key = "tenant"
	Service Key = "service"
	Params  Key = "params"
)
