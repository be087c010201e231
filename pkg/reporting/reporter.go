package reporting

// DefaultReporter bundles the console, CSV, JSON and Excel reporters
// behind the Reporter interface.
type DefaultReporter struct {
	*DefaultConsoleReporter
	*DefaultCSVReporter
	*DefaultJSONReporter
	*DefaultExcelReporter
}

// NewReporter creates the default composite reporter.
func NewReporter() *DefaultReporter {
	return &DefaultReporter{
		DefaultConsoleReporter: NewConsoleReporter(),
		DefaultCSVReporter:     NewCSVReporter(),
		DefaultJSONReporter:    NewJSONReporter(),
		DefaultExcelReporter:   NewExcelReporter(),
	}
}
