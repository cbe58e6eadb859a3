// Package natives implements the host native-function library spec.md §6.4
// names as resolvable: print, string/list helpers, math, type coercion,
// file I/O, and process control. The core itself treats these as an
// external collaborator (spec.md §1); this package is the collaborator
// cmd/osfl registers before calling Run, in the same spirit as gothird's
// host-supplied I/O primitives in io.go.
package natives

import (
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/akshatnamdeo/osfl/internal/flushio"
	"github.com/akshatnamdeo/osfl/internal/value"
	"github.com/akshatnamdeo/osfl/internal/vm"
)

func readAll(r io.Reader) ([]byte, error) { return io.ReadAll(r) }

// Clock abstracts wall-clock time so tests can supply a fixed value instead
// of the real time native.
type Clock func() time.Time

// Register installs every native named in spec.md §6.4 into v, writing
// `print` output to out. now defaults to time.Now if nil.
func Register(v *vm.VM, out flushio.WriteFlusher, now Clock) {
	if now == nil {
		now = time.Now
	}

	v.RegisterNative("print", func(args []value.Value) value.Value {
		parts := make([]string, len(args))
		for i, a := range args {
			parts[i] = a.String()
		}
		fmt.Fprintln(out, strings.Join(parts, " "))
		out.Flush()
		return value.NewNull()
	})

	v.RegisterNative("split", func(args []value.Value) value.Value {
		s, sep := argStr(args, 0), argStr(args, 1)
		result := value.NewList()
		for _, part := range strings.Split(s, sep) {
			result.List().Append(value.NewString(part))
		}
		return result
	})

	v.RegisterNative("join", func(args []value.Value) value.Value {
		if len(args) == 0 {
			return value.NewString("")
		}
		// A single List argument joins its items with an optional separator.
		// Otherwise every argument is concatenated in order with no
		// separator: the compiler's string-interpolation lowering folds
		// adjacent parts pairwise through this same native (compiler/
		// expression.go's compileInterpolation), so join must also work as
		// plain concatenation over bare string/value arguments.
		if args[0].Kind == value.ListKind {
			sep := ""
			if len(args) > 1 {
				sep = args[1].String()
			}
			items := args[0].List().Items
			parts := make([]string, len(items))
			for i, it := range items {
				parts[i] = it.String()
			}
			return value.NewString(strings.Join(parts, sep))
		}
		var sb strings.Builder
		for _, a := range args {
			sb.WriteString(a.String())
		}
		return value.NewString(sb.String())
	})

	v.RegisterNative("substring", func(args []value.Value) value.Value {
		s := argStr(args, 0)
		start := clampIndex(int(argInt(args, 1)), len(s))
		end := len(s)
		if len(args) > 2 {
			end = clampIndex(int(argInt(args, 2)), len(s))
		}
		if end < start {
			end = start
		}
		return value.NewString(s[start:end])
	})

	v.RegisterNative("replace", func(args []value.Value) value.Value {
		s, old, repl := argStr(args, 0), argStr(args, 1), argStr(args, 2)
		return value.NewString(strings.ReplaceAll(s, old, repl))
	})

	v.RegisterNative("to_upper", func(args []value.Value) value.Value {
		return value.NewString(strings.ToUpper(argStr(args, 0)))
	})

	v.RegisterNative("to_lower", func(args []value.Value) value.Value {
		return value.NewString(strings.ToLower(argStr(args, 0)))
	})

	v.RegisterNative("len", func(args []value.Value) value.Value {
		if len(args) == 0 {
			return value.NewInt(0)
		}
		switch args[0].Kind {
		case value.StringKind:
			return value.NewInt(int64(len(args[0].Str())))
		case value.ListKind:
			return value.NewInt(int64(args[0].List().Len()))
		default:
			return value.NewInt(0)
		}
	})

	v.RegisterNative("append", func(args []value.Value) value.Value {
		if len(args) < 2 || args[0].Kind != value.ListKind {
			return value.NewNull()
		}
		args[0].List().Append(args[1])
		return args[0]
	})

	v.RegisterNative("pop", func(args []value.Value) value.Value {
		if len(args) == 0 || args[0].Kind != value.ListKind {
			return value.NewNull()
		}
		out, ok := args[0].List().Pop()
		if !ok {
			return value.NewNull()
		}
		return out
	})

	v.RegisterNative("insert", func(args []value.Value) value.Value {
		if len(args) < 3 || args[0].Kind != value.ListKind {
			return value.NewNull()
		}
		args[0].List().Insert(int(argInt(args, 1)), args[2])
		return args[0]
	})

	v.RegisterNative("remove", func(args []value.Value) value.Value {
		if len(args) < 2 || args[0].Kind != value.ListKind {
			return value.NewNull()
		}
		out, ok := args[0].List().Remove(int(argInt(args, 1)))
		if !ok {
			return value.NewNull()
		}
		return out
	})

	registerMath(v)
	registerConversions(v)
	registerIO(v)

	v.RegisterNative("exit", func(args []value.Value) value.Value {
		v.Stop()
		return value.NewNull()
	})

	v.RegisterNative("time", func(args []value.Value) value.Value {
		return value.NewInt(now().Unix())
	})

	v.RegisterNative("type", func(args []value.Value) value.Value {
		if len(args) == 0 {
			return value.NewString(value.Null.String())
		}
		return value.NewString(args[0].Kind.String())
	})

	v.RegisterNative("range", func(args []value.Value) value.Value {
		var lo, hi int64
		switch len(args) {
		case 0:
		case 1:
			hi = argInt(args, 0)
		default:
			lo, hi = argInt(args, 0), argInt(args, 1)
		}
		result := value.NewList()
		for i := lo; i < hi; i++ {
			result.List().Append(value.NewInt(i))
		}
		return result
	})

	v.RegisterNative("enumerate", func(args []value.Value) value.Value {
		result := value.NewList()
		if len(args) == 0 || args[0].Kind != value.ListKind {
			return result
		}
		for i, it := range args[0].List().Items {
			pair := value.NewList()
			pair.List().Append(value.NewInt(int64(i)))
			pair.List().Append(it)
			result.List().Append(pair)
		}
		return result
	})
}

func registerMath(v *vm.VM) {
	unary := map[string]func(float64) float64{
		"sqrt": math.Sqrt,
		"sin":  math.Sin,
		"cos":  math.Cos,
		"tan":  math.Tan,
		"log":  math.Log,
		"abs":  math.Abs,
	}
	for name, fn := range unary {
		fn := fn
		v.RegisterNative(name, func(args []value.Value) value.Value {
			return value.NewFloat(fn(argFloat(args, 0)))
		})
	}
	v.RegisterNative("pow", func(args []value.Value) value.Value {
		return value.NewFloat(math.Pow(argFloat(args, 0), argFloat(args, 1)))
	})
}

func registerConversions(v *vm.VM) {
	v.RegisterNative("int", func(args []value.Value) value.Value {
		if len(args) == 0 {
			return value.NewInt(0)
		}
		switch args[0].Kind {
		case value.IntKind:
			return args[0]
		case value.FloatKind:
			return value.NewInt(int64(args[0].Float()))
		case value.BoolKind:
			if args[0].Bool() {
				return value.NewInt(1)
			}
			return value.NewInt(0)
		case value.StringKind:
			n, _ := strconv.ParseInt(strings.TrimSpace(args[0].Str()), 10, 64)
			return value.NewInt(n)
		default:
			return value.NewInt(0)
		}
	})

	v.RegisterNative("float", func(args []value.Value) value.Value {
		return value.NewFloat(argFloat(args, 0))
	})

	v.RegisterNative("str", func(args []value.Value) value.Value {
		if len(args) == 0 {
			return value.NewString("")
		}
		return value.NewString(args[0].String())
	})

	v.RegisterNative("bool", func(args []value.Value) value.Value {
		if len(args) == 0 {
			return value.NewBool(false)
		}
		return value.NewBool(args[0].Truthy())
	})
}

func registerIO(v *vm.VM) {
	v.RegisterNative("open", func(args []value.Value) value.Value {
		path := argStr(args, 0)
		mode := "r"
		if len(args) > 1 {
			mode = argStr(args, 1)
		}
		flag := os.O_RDONLY
		switch mode {
		case "w":
			flag = os.O_WRONLY | os.O_CREATE | os.O_TRUNC
		case "a":
			flag = os.O_WRONLY | os.O_CREATE | os.O_APPEND
		case "r+", "rw":
			flag = os.O_RDWR
		}
		f, err := os.OpenFile(path, flag, 0o644)
		if err != nil {
			return value.NewNull()
		}
		return value.NewFile(value.NewFileHandle(path, f))
	})

	v.RegisterNative("read", func(args []value.Value) value.Value {
		if len(args) == 0 || args[0].Kind != value.FileKind {
			return value.NewNull()
		}
		f := args[0].File()
		if f.Closed() {
			return value.NewNull()
		}
		buf, err := readAll(f.Stream)
		if err != nil {
			return value.NewNull()
		}
		return value.NewString(string(buf))
	})

	v.RegisterNative("write", func(args []value.Value) value.Value {
		if len(args) < 2 || args[0].Kind != value.FileKind {
			return value.NewInt(0)
		}
		f := args[0].File()
		if f.Closed() {
			return value.NewInt(0)
		}
		n, err := f.Stream.Write([]byte(argStr(args, 1)))
		if err != nil {
			return value.NewInt(int64(n))
		}
		return value.NewInt(int64(n))
	})

	v.RegisterNative("close", func(args []value.Value) value.Value {
		if len(args) == 0 || args[0].Kind != value.FileKind {
			return value.NewNull()
		}
		args[0].File().Close()
		return value.NewNull()
	})
}

func argStr(args []value.Value, i int) string {
	if i < 0 || i >= len(args) {
		return ""
	}
	return args[i].String()
}

func argInt(args []value.Value, i int) int64 {
	if i < 0 || i >= len(args) {
		return 0
	}
	if args[i].Kind == value.IntKind {
		return args[i].Int()
	}
	if args[i].Kind == value.FloatKind {
		return int64(args[i].Float())
	}
	return 0
}

func argFloat(args []value.Value, i int) float64 {
	if i < 0 || i >= len(args) {
		return 0
	}
	switch args[i].Kind {
	case value.FloatKind:
		return args[i].Float()
	case value.IntKind:
		return float64(args[i].Int())
	default:
		return 0
	}
}

func clampIndex(i, n int) int {
	if i < 0 {
		i = 0
	}
	if i > n {
		i = n
	}
	return i
}
