package lessongraph

import "time"

// StampLayout is the layout used for export file names: 20060102_150405.
const StampLayout = "20060102_150405"

// TimeProvider provides the clock for prompt templates and export file names.
// Inject a MockTimeProvider in tests to make both deterministic.
//
// All methods are accessible in prompt templates via the .Time field:
//
//	Today is {{.Time.Today}} ({{.Time.Weekday}})
type TimeProvider interface {
	// Now returns the current time.
	Now() time.Time

	// Today returns today's date as a string (YYYY-MM-DD).
	//
	// Template: {{.Time.Today}}
	// Output: 2025-02-15
	Today() string

	// Weekday returns the current day of the week (e.g., "Monday").
	//
	// Template: {{.Time.Weekday}}
	// Output: Saturday
	Weekday() string

	// Format returns the current time formatted with the given layout.
	//
	// Template: {{.Time.Format "2006-01-02 15:04"}}
	// Output: 2025-02-15 14:30
	Format(layout string) string

	// Stamp returns the current time in StampLayout, for file names.
	Stamp() string
}

// DefaultTimeProvider is the standard TimeProvider using the system clock.
type DefaultTimeProvider struct{}

// NewDefaultTimeProvider creates a new DefaultTimeProvider.
func NewDefaultTimeProvider() *DefaultTimeProvider {
	return &DefaultTimeProvider{}
}

func (p *DefaultTimeProvider) Now() time.Time              { return time.Now() }
func (p *DefaultTimeProvider) Today() string               { return p.Now().Format(time.DateOnly) }
func (p *DefaultTimeProvider) Weekday() string             { return p.Now().Weekday().String() }
func (p *DefaultTimeProvider) Format(layout string) string { return p.Now().Format(layout) }
func (p *DefaultTimeProvider) Stamp() string               { return p.Now().Format(StampLayout) }

// MockTimeProvider is a TimeProvider that returns a fixed time.
type MockTimeProvider struct {
	fixedTime time.Time
}

// NewMockTimeProvider creates a MockTimeProvider with the given fixed time.
func NewMockTimeProvider(t time.Time) *MockTimeProvider {
	return &MockTimeProvider{fixedTime: t}
}

// SetTime updates the fixed time returned by Now().
func (m *MockTimeProvider) SetTime(t time.Time) {
	m.fixedTime = t
}

func (m *MockTimeProvider) Now() time.Time              { return m.fixedTime }
func (m *MockTimeProvider) Today() string               { return m.fixedTime.Format(time.DateOnly) }
func (m *MockTimeProvider) Weekday() string             { return m.fixedTime.Weekday().String() }
func (m *MockTimeProvider) Format(layout string) string { return m.fixedTime.Format(layout) }
func (m *MockTimeProvider) Stamp() string               { return m.fixedTime.Format(StampLayout) }

var (
	_ TimeProvider = (*DefaultTimeProvider)(nil)
	_ TimeProvider = (*MockTimeProvider)(nil)
)
