// Package pipeline orchestrates the anonymization stages: tokenization,
// local detection, remote classification, assembly, alias generation, and
// substitution.
//
// Each stage is a Step that reads the accumulated ProcessResult and fills
// in its own fields. The pipeline is single-threaded and deterministic
// given its inputs: stages run to completion in order, and the only
// suspension points are I/O inside the classification and storage calls.
//
// Design decision: We keep the Step interface rather than chaining plain
// function calls because:
// 1. Steps carry configuration state (the classify client, the generator)
// 2. A Name() method gives consistent structured logging per stage
// 3. The completed-step trail in the result makes partial behavior
//    observable in tests and reports
//
// Failure semantics follow the error taxonomy of the design: remote
// classification failures degrade the result and never abort the run;
// storage failures propagate, because the caller owns persistence.
package pipeline
