// Package harness runs scripted catalog-editing scenarios against the
// variant engine and checks the resulting combination list.
//
// # Scenario Format
//
// Scenarios are YAML files with the following structure:
//
//	name: tee_lifecycle
//	description: "What this scenario validates"
//	attributes:
//	  - {name: Color, values: [Red, Blue]}
//	  - {name: Size, values: [S, M]}
//	steps:
//	  - action: regenerate
//	    expect: {count: 4, created: 4}
//	  - action: bulk
//	    ids: [var-0001]
//	    price: "19.99"
//	  - action: regenerate
//	    attributes:
//	      - {name: Color, values: [Red, Blue, Green]}
//	      - {name: Size, values: [S, M]}
//	    expect: {kept: 4, created: 2}
//	  - action: search
//	    query: gre
//	    expect: {count: 2}
//	assertions:
//	  - type: count
//	    count: 6
//	  - type: contains
//	    where: {Color: Red, Size: S}
//	    expect: {id: var-0001, price: "19.99"}
//
// # Step Actions
//
//   - regenerate: expand attributes (the step's, else the scenario's) and
//     reconcile against the current list
//   - bulk: apply a price and/or inventory patch to ids
//   - search: free-text search; the list is not changed
//   - filter: attribute/value filter; the list is not changed
//
// # Assertion Types
//
//   - count: the final list has exactly count combinations
//   - contains: some combination matches where and has the expect fields
//   - absent: no combination matches where
//   - order: the final list IDs equal ids, in order
//   - unique_barcodes: every barcode is a valid EAN-13 and none repeat
//
// # Deterministic Testing
//
// IDs come from testutil.SequenceIDGenerator ("var-0001", ...) and barcodes
// from a seeded source, so a scenario yields the same list on every run.
// Golden snapshots record the trace and final list; barcodes are recorded
// as a validity flag only.
package harness
