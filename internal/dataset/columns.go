package dataset

// Canonical column names recognized by the filter pipeline. Uploads may
// carry them in any casing; resolution goes through Table.Lookup.
const (
	ColumnPayer       = "PAGADOR"
	ColumnChurnType   = "Tipo de Churn"
	ColumnLegalForm   = "FORMAJURIDICA"
	ColumnCreatedAt   = "DATACRIACAOOS"
	ColumnDelinquency = "STATUSINADIMPLENTE"
	ColumnCategory    = "CATEGORIA4"

	// ColumnPriority is the transient rank column attached while sorting
	// and dropped before export. It is never part of the persisted data.
	ColumnPriority = "Prioridade Motivo"
)

// Column describes one recognized input column.
type Column struct {
	Name     string
	Required bool
}

// Columns lists the input columns the pipeline knows about. A missing
// required column aborts the run; a missing optional one only degrades its
// step with a warning.
var Columns = []Column{
	{Name: ColumnPayer},
	{Name: ColumnChurnType, Required: true},
	{Name: ColumnLegalForm, Required: true},
	{Name: ColumnCreatedAt},
	{Name: ColumnDelinquency},
	{Name: ColumnCategory},
}

// Required reports whether the canonical column must be present for a run
// to proceed.
func Required(name string) bool {
	for _, c := range Columns {
		if c.Name == name {
			return c.Required
		}
	}
	return false
}
