package opencl

// dotProductSource is the simple, one-work-item-per-row kernel: row r of
// matrix dotted against vector, written to result[r]. Grounded in
// spec.md's row-major reference kernel text and
// original_source/bins/opencl_bf_search/src/opencl/dot_product.rs's
// program-build shape (source text differs: that crate's kernel also
// folds a manual priority-queue reduction in; per DESIGN.md Open Question
// 2, top-K stays host-side here, so only the dot-product half is kept).
const dotProductSource = `
__kernel void dot_product(
    __global const float* matrix,
    __global const float* vector,
    __global float* result,
    const uint num_rows,
    const uint num_dims)
{
    uint row = get_global_id(0);
    if (row >= num_rows) return;

    float sum = 0.0f;
    __global const float* base = matrix + row * num_dims;
    for (uint k = 0; k < num_dims; k++) {
        sum += base[k] * vector[k];
    }
    result[row] = sum;
}
`

// dotProductTiledSource is the column-major variant: the host transposes
// the matrix before upload (internal/matrix.AsTransposed) and the kernel
// stages the query vector into local memory via an async copy so every
// work item in a group reads it from fast local memory instead of global
// memory, per spec.md §4.J's tiled-variant note.
const dotProductTiledSource = `
__kernel void dot_product_tiled(
    __global const float* matrixT,
    __global const float* vector,
    __global float* result,
    const uint num_rows,
    const uint num_dims,
    __local float* localVector)
{
    event_t copyEvent = async_work_group_copy(localVector, vector, num_dims, 0);
    wait_group_events(1, &copyEvent);

    uint row = get_global_id(0);
    if (row >= num_rows) return;

    float sum = 0.0f;
    for (uint k = 0; k < num_dims; k++) {
        sum += matrixT[k * num_rows + row] * localVector[k];
    }
    result[row] = sum;
}
`

// Variant names a compiled kernel within a built program, used as half of
// the program/kernel LRU cache key.
type Variant string

const (
	// VariantSimple is the row-major, one-work-item-per-row kernel.
	VariantSimple Variant = "dot_product"
	// VariantTiled is the column-major kernel with a local-memory staged
	// query vector.
	VariantTiled Variant = "dot_product_tiled"
)

func sourceFor(variant Variant) string {
	if variant == VariantTiled {
		return dotProductTiledSource
	}
	return dotProductSource
}
