package builder

import (
	"fmt"
	"strings"

	"github.com/notargets/ScanKernel/scan"
)

// DataType represents the element type a scan kernel is generated for
type DataType int

const (
	Float32 DataType = iota + 1
	Float64
	INT32
	INT64
)

// Kernel names emitted by KernelSource, in launch order
const (
	UpsweepKernel   = "scanUpsweep"
	SpineKernel     = "scanSpine"
	DownsweepKernel = "scanDownsweep"
)

// DataTypeOf maps a Go element type to its DataType
func DataTypeOf[T scan.Element]() DataType {
	var sample T
	switch any(sample).(type) {
	case float32:
		return Float32
	case float64:
		return Float64
	case int32:
		return INT32
	case int64:
		return INT64
	}
	panic("builder: unsupported element type")
}

// CType returns the C type name used for elem_t
func (dt DataType) CType() string {
	switch dt {
	case Float32:
		return "float"
	case Float64:
		return "double"
	case INT32:
		return "int"
	case INT64:
		return "long long"
	default:
		return "double"
	}
}

// Size returns the size in bytes of a data type
func (dt DataType) Size() int64 {
	switch dt {
	case Float32, INT32:
		return 4
	default:
		return 8
	}
}

func (dt DataType) String() string {
	switch dt {
	case Float32:
		return "float32"
	case Float64:
		return "float64"
	case INT32:
		return "int32"
	case INT64:
		return "int64"
	default:
		return fmt.Sprintf("DataType(%d)", int(dt))
	}
}

// Config holds configuration for creating a Builder
type Config struct {
	DataType   DataType
	Operator   string
	Expression string
}

// Builder generates the OKL source for the three-phase reduce-then-scan:
// upsweep reduces each block, spine scans the block totals, downsweep
// rescans each block seeded with its spine prefix.
type Builder struct {
	DataType   DataType
	Operator   string
	Expression string

	// Generated code
	KernelPreamble string
}

// NewBuilder creates a new Builder instance
func NewBuilder(cfg Config) *Builder {
	if cfg.Expression == "" {
		panic("operator expression cannot be empty")
	}
	switch cfg.DataType {
	case Float32, Float64, INT32, INT64:
	default:
		panic(fmt.Sprintf("unsupported data type %s", cfg.DataType))
	}
	return &Builder{
		DataType:   cfg.DataType,
		Operator:   cfg.Operator,
		Expression: cfg.Expression,
	}
}

// ForOperator configures a builder from an operator descriptor
func ForOperator[T scan.Element](op scan.Operator[T]) *Builder {
	return NewBuilder(Config{
		DataType:   DataTypeOf[T](),
		Operator:   op.Name(),
		Expression: op.Expression(),
	})
}

// GeneratePreamble generates the element typedef and the combine macro
func (kb *Builder) GeneratePreamble() string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("// %s scan over %s\n", kb.Operator, kb.DataType))
	sb.WriteString(fmt.Sprintf("typedef %s elem_t;\n", kb.DataType.CType()))
	sb.WriteString(fmt.Sprintf("#define SCAN_OP(a, b) %s\n", kb.Expression))
	sb.WriteString("#define BLOCK_END(b) (((b) + 1) * chunk < N ? ((b) + 1) * chunk : N)\n")
	sb.WriteString("\n")

	kb.KernelPreamble = sb.String()
	return kb.KernelPreamble
}

// KernelSource returns the preamble followed by all three kernels
func (kb *Builder) KernelSource() string {
	return kb.GeneratePreamble() + upsweepSource + spineSource + downsweepSource
}

const upsweepSource = `
@kernel void scanUpsweep(const int N,
                         const int chunk,
                         const int nblocks,
                         const elem_t identity,
                         const elem_t *src,
                         elem_t *partials) {
	for (int b = 0; b < nblocks; ++b; @outer) {
		for (int t = 0; t < 1; ++t; @inner) {
			elem_t acc = identity;
			for (int i = b * chunk; i < BLOCK_END(b); ++i) {
				acc = SCAN_OP(acc, src[i]);
			}
			partials[b] = acc;
		}
	}
}
`

const spineSource = `
@kernel void scanSpine(const int nblocks,
                       const elem_t identity,
                       elem_t *partials) {
	for (int b = 0; b < 1; ++b; @outer) {
		for (int t = 0; t < 1; ++t; @inner) {
			elem_t acc = identity;
			for (int i = 0; i < nblocks; ++i) {
				const elem_t total = partials[i];
				partials[i] = acc;
				acc = SCAN_OP(acc, total);
			}
		}
	}
}
`

const downsweepSource = `
@kernel void scanDownsweep(const int N,
                           const int chunk,
                           const int nblocks,
                           const int exclusive,
                           const elem_t *src,
                           const elem_t *partials,
                           elem_t *dest) {
	for (int b = 0; b < nblocks; ++b; @outer) {
		for (int t = 0; t < 1; ++t; @inner) {
			elem_t acc = partials[b];
			for (int i = b * chunk; i < BLOCK_END(b); ++i) {
				const elem_t v = src[i];
				if (exclusive) {
					dest[i] = acc;
					acc = SCAN_OP(acc, v);
				} else {
					acc = SCAN_OP(acc, v);
					dest[i] = acc;
				}
			}
		}
	}
}
`
