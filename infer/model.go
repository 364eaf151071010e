package infer

// Model is a loaded graph ready for inference.
//
// The interface hides the internal engine so callers can mock it in
// tests.
type Model interface {
	// Forward runs a single tensor through a graph with exactly one input
	// and one output. Use ForwardBatch otherwise.
	Forward(input *Tensor) (*Tensor, error)

	// ForwardBatch runs named inputs, one tensor per batch lane, and
	// returns each output's batch.
	//
	// Example:
	//
	//	outputs, err := model.ForwardBatch(map[string][]*infer.Tensor{
	//	    "x": {lane0, lane1},
	//	})
	//	if err != nil {
	//	    log.Fatal(err)
	//	}
	//	y := outputs["y"][0]
	ForwardBatch(inputs map[string][]*Tensor) (map[string][]*Tensor, error)

	// InputNames returns the names of the graph inputs.
	InputNames() []string

	// OutputNames returns the names of the graph outputs.
	OutputNames() []string

	// Graph returns the loaded graph for introspection.
	Graph() *Graph

	// Warnings returns the problems the loader recovered from.
	Warnings() []error
}
