// Package harness provides conformance testing for scene tables.
//
// A scenario lists checks against the read operations of a table.Table and
// the values or errors they must produce. The harness runs every check,
// records a trace, and reports each mismatch with a diff.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: scenario_name
//	description: "What this scenario validates"
//	table: path/to/table.cue   # optional; empty means the embedded table
//	checks:
//	  - op: scene_count
//	    expect: 1
//	  - op: scene
//	    index: 0
//	    expect: 01_L_filler_present_mirror_BOX.png
//	  - op: object_set
//	    index: 0
//	    expect_list: [mirror_CHANGE, painting, bedpost, pillow, TV]
//	  - op: object
//	    index: 0
//	    slot: 0
//	    expect: { color: red, label: mirror, change_target: true }
//	  - op: scene
//	    index: 1
//	    error: out_of_range
//
// # Operations
//
//   - scene_count: number of scenes
//   - prompts, choices, color_slots: the fixed lists
//   - scene: image name of scene index
//   - object_set: display labels of scene index, change target suffixed
//   - object: one object record, by index and slot
//   - change_target: the change target record of scene index
//
// # Deterministic Testing
//
// Checks run in file order and each trace event carries a logical seq, so
// the same scenario against the same table always yields the same trace.
// RunWithGolden snapshots that trace as canonical JSON.
//
// # Usage
//
//	scenario, err := harness.LoadScenario("testdata/scenarios/boxed_scenes.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result, err := harness.Run(scenario, table.Default())
//	if !result.Pass {
//	    for _, err := range result.Errors {
//	        log.Println(err)
//	    }
//	}
package harness
