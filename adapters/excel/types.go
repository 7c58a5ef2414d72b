package excel

// TableData is a sheet or CSV file as header plus ordered rows of cells.
// Every row has exactly len(Headers) cells.
type TableData struct {
	Headers []string
	Rows    [][]string
}

// Records returns the header followed by the rows, the layout encoding/csv uses
func (d *TableData) Records() [][]string {
	records := make([][]string, 0, len(d.Rows)+1)
	records = append(records, d.Headers)
	return append(records, d.Rows...)
}
