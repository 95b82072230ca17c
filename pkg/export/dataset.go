package export

// Dataset defines tabular export content with a fixed column order.
// Report builders emit one row slice per record, aligned with Headers.
type Dataset struct {
	Sheet   string
	Headers []string
	Rows    [][]string
}
