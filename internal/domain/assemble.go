package domain

// Assemble builds snapshot records from the header and the normalized rows.
// Rows with an unrecognized status token are skipped; NormalizeTables never
// produces them. IDs are assigned 1..n in row order.
func Assemble(meta BulletinMetadata, rows []BeachRow) []BeachRecord {
	days := ExpandPeriod(meta.Period)

	records := make([]BeachRecord, 0, len(rows))
	for _, row := range rows {
		status, err := StatusFromCode(row.StatusCode)
		if err != nil {
			continue
		}
		records = append(records, BeachRecord{
			ID:             len(records) + 1,
			Name:           row.Name,
			Status:         status,
			Zone:           ClassifyZone(row.Name),
			Period:         meta.Period,
			DaysInPeriod:   days,
			BulletinNumber: meta.Number,
			SampleType:     meta.SampleType,
			ExtractedOn:    meta.ExtractedOn,
		})
	}
	return records
}
