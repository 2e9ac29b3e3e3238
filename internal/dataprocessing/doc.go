// Package dataprocessing implements the sourcing events pipeline: loading the two
// uploaded workbooks, enriching events, filtering them and aggregating counts.
//
// # Architecture
//
// The package is organized into four stages:
//
// 1. Loader: reads the events workbook and the market structure mapping
// 2. Transformer: extracts the category code, drops test records, joins clusters,
// parses entry dates and normalizes organizations
// 3. Filter: narrows enriched events by organization group and month
// 4. Aggregator: grouped counts, cross-tabs and month pivots
//
// # Usage
//
//	loader := dataprocessing.NewLoader("", logger)
//	sheet, err := loader.LoadEvents(eventsFile)
//	if err != nil {
//	    return err
//	}
//	mappings, err := loader.LoadClusters(clustersFile)
//	if err != nil {
//	    return err
//	}
//
//	tr := dataprocessing.NewTransformer(dataprocessing.DefaultTransformOptions(), logger)
//	events := tr.Transform(sheet, mappings)
//	filtered := dataprocessing.Filter(events, dataprocessing.DefaultSelection(events))
//	pivot := dataprocessing.PivotMonthByOrganization(filtered)
//
// # Data Flow
//
//	Workbooks → Loader → EventSheet + ClusterMappings → Transformer → SourcingEvents → Filter → Aggregator
//
// # Error Handling
//
// Only the loader fails. It returns *MalformedFileError, *MissingSheetError or
// *MissingColumnError, to be matched with errors.As. Every later stage is total:
// unparsable values become nulls.
//
// # Month Ordering
//
// Month names are always ordered January through December. Cross-tabs and pivots
// carry all twelve months even when some have no events.
package dataprocessing
