// Package kernel implements operator kernels and the registry that maps
// operator types to them.
//
// A kernel is built once per graph operator by a Factory, which reads the
// operator's parameters and weight attributes. Forward then runs on
// batches: inputs and outputs are slices of tensors, one per batch lane,
// and independent lanes are computed in parallel.
//
// Built-in kernels:
//   - torch.cat: channel-axis concatenation
//   - nn.Hardsigmoid, nn.ReLU, nn.Sigmoid: elementwise activations
//   - nn.Linear: fully connected layer
package kernel
