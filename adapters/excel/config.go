package excel

// Sheet names used in workbooks written by this package
const (
	CovarianceSheet = "covariance"
	PairsSheet      = "pairs"
	RunSheet        = "run"
)

// ExcelConfig holds configuration for workbook import and export
type ExcelConfig struct {
	// SheetName is the sheet read from input workbooks
	SheetName string `json:"sheet_name" yaml:"sheet_name"`
	// FileName is the covariance workbook written next to the CSV outputs
	FileName string `json:"file_name" yaml:"file_name"`
}

// DefaultExcelConfig returns the defaults used by the CLI
func DefaultExcelConfig() ExcelConfig {
	return ExcelConfig{
		SheetName: "Sheet1",
		FileName:  "covariance_matrix.xlsx",
	}
}
