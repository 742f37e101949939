package types

// Metrics is what the cache wants to measure. The cache calls these methods
// as events happen; implementations decide what to do with them.
type Metrics interface {

	// Hit is called when the cache serves a fresh value.
	Hit()

	// Miss is called when a key is absent and has to be loaded.
	Miss()

	// Expire is called when an entry is dropped because its nominal expiry
	// has genuinely passed.
	Expire()

	// EarlyExpire is called when a reader probabilistically volunteered to
	// treat a still-valid entry as expired. The ratio of EarlyExpire to
	// Expire shows how much recomputation the XFetch test is pulling forward
	// of the deadline.
	EarlyExpire()

	// Refresh is called when a volunteer is handed to a background refresh
	// hook instead of recomputing inline.
	Refresh()
}

// NoopMetrics is the default Metrics: it ignores every event. Having a
// non-nil default keeps the hot paths free of nil checks.
type NoopMetrics struct{}

func (NoopMetrics) Hit()         {}
func (NoopMetrics) Miss()        {}
func (NoopMetrics) Expire()      {}
func (NoopMetrics) EarlyExpire() {}
func (NoopMetrics) Refresh()     {}
