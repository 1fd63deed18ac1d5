package statline

import (
	"strconv"
)

// Counter tracks a server-side maintained value by emitting relative deltas.
type Counter struct {
	name   string
	client *Client
}

// Gauge tracks an absolute point-in-time value, overwritten on each update.
type Gauge struct {
	name   string
	client *Client
}

// Histogram tracks a value whose statistical distribution is computed server-side. Timer
// durations are recorded through histograms as well.
type Histogram struct {
	name   string
	client *Client
}

// Meter tracks the rate of occurrence of a named event via bare mark signals.
type Meter struct {
	name   string
	client *Client
}

// Counter creates a counter with a formatted name. Returns ErrNameRequired if the formatted
// name is empty.
func (c *Client) Counter(format string, args ...interface{}) (*Counter, error) {
	name := formatName(c.prefix, format, args...)
	if name == "" {
		return nil, ErrNameRequired
	}

	return &Counter{name: name, client: c}, nil
}

// Gauge creates a gauge with a formatted name. Returns ErrNameRequired if the formatted name
// is empty.
func (c *Client) Gauge(format string, args ...interface{}) (*Gauge, error) {
	name := formatName(c.prefix, format, args...)
	if name == "" {
		return nil, ErrNameRequired
	}

	return &Gauge{name: name, client: c}, nil
}

// Histogram creates a histogram with a formatted name. Returns ErrNameRequired if the
// formatted name is empty.
func (c *Client) Histogram(format string, args ...interface{}) (*Histogram, error) {
	name := formatName(c.prefix, format, args...)
	if name == "" {
		return nil, ErrNameRequired
	}

	return &Histogram{name: name, client: c}, nil
}

// Meter creates a meter with a formatted name. Returns ErrNameRequired if the formatted name
// is empty.
func (c *Client) Meter(format string, args ...interface{}) (*Meter, error) {
	name := formatName(c.prefix, format, args...)
	if name == "" {
		return nil, ErrNameRequired
	}

	return &Meter{name: name, client: c}, nil
}

// Name reads the fully formatted metric name.
func (ct *Counter) Name() string { return ct.name }

// Update emits a relative delta for the counter.
func (ct *Counter) Update(delta int64) {
	ct.client.emit(updateLine(ct.name, kindCounter, strconv.FormatInt(delta, 10)))
}

// Increment emits a counter update of +1.
func (ct *Counter) Increment() {
	ct.Update(1)
}

// Decrement emits a counter update of -1.
func (ct *Counter) Decrement() {
	ct.Update(-1)
}

// Delete instructs the aggregator to drop the counter.
func (ct *Counter) Delete() {
	ct.client.emit(deleteLine(ct.name, kindCounter))
}

// Name reads the fully formatted metric name.
func (g *Gauge) Name() string { return g.name }

// Update emits an absolute value for the gauge, overwriting any previous reading.
func (g *Gauge) Update(value float64) {
	g.client.emit(updateLine(g.name, kindGauge, formatValue(value)))
}

// Delete instructs the aggregator to drop the gauge.
func (g *Gauge) Delete() {
	g.client.emit(deleteLine(g.name, kindGauge))
}

// Name reads the fully formatted metric name.
func (h *Histogram) Name() string { return h.name }

// Update emits a single observation into the histogram's distribution.
func (h *Histogram) Update(value float64) {
	h.client.emit(updateLine(h.name, kindHistogram, formatValue(value)))
}

// Delete instructs the aggregator to drop the histogram.
func (h *Histogram) Delete() {
	h.client.emit(deleteLine(h.name, kindHistogram))
}

// Name reads the fully formatted metric name.
func (m *Meter) Name() string { return m.name }

// Mark emits a single occurrence of the meter's event.
func (m *Meter) Mark() {
	m.client.emit(markLine(m.name))
}

// Delete instructs the aggregator to drop the meter.
func (m *Meter) Delete() {
	m.client.emit(meterDeleteLine(m.name))
}
