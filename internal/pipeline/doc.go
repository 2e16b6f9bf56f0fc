// Package pipeline implements the churn filter chain that turns an uploaded
// churn table into a prioritized mailing list.
//
// A run is a single synchronous pass over one dataset.Table through six
// steps in fixed order:
//
//  1. payer_exclusion: drop rows whose payer id is on the operator's
//     exclusion list (skipped when the list is empty or unparseable)
//  2. churn_type_exclusion: drop involuntary churn rows
//  3. legal_form_exclusion: drop legal form C1 rows
//  4. recency_window: keep rows created inside the recency window
//  5. delinquency_exclusion: drop delinquent rows
//  6. category_rank: keep allow-listed churn reasons and sort by creation
//     date descending, then by the category's position in the allow-list
//
// Steps two and three require their column; its absence aborts the run with
// a typed error. Every other step degrades when its column is missing: the
// step is skipped and a Portuguese warning is recorded for the operator.
// Warnings are user facing and never abort a run, and a run that filters
// away every row is a valid empty result, not an error.
//
// Example usage:
//
//	runner := pipeline.NewRunner(logger)
//	result, err := runner.Run(ctx, table, pipeline.Params{
//	    AllowedCategories: categories,
//	    ExcludedPayers:    payers,
//	})
//	if err != nil {
//	    return err
//	}
//	if result.Empty() {
//	    // nothing to export
//	}
package pipeline
