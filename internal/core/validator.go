package core

// Validate compares upload columns against the expected feature columns.
// Missing lists expected columns absent from the upload, in expected order;
// Extra lists upload columns that are not features, in upload order.
func Validate(uploadColumns, expected []string) ValidationReport {
	present := make(map[string]struct{}, len(uploadColumns))
	for _, c := range uploadColumns {
		present[c] = struct{}{}
	}
	wanted := make(map[string]struct{}, len(expected))
	for _, c := range expected {
		wanted[c] = struct{}{}
	}

	var report ValidationReport
	for _, c := range expected {
		if _, ok := present[c]; !ok {
			report.Missing = append(report.Missing, c)
		}
	}
	for _, c := range uploadColumns {
		if _, ok := wanted[c]; !ok {
			report.Extra = append(report.Extra, c)
		}
	}
	return report
}
