package abi

import (
	"fmt"
	"math/big"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/trebuchet-org/salvo/internal/domain"
	"github.com/trebuchet-org/salvo/internal/domain/models"
)

var addressPattern = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)

var bigIntType = reflect.TypeOf((*big.Int)(nil))

// ArgumentBuilder converts raw user input into values the go-ethereum ABI
// packer accepts for a constructor call
type ArgumentBuilder struct{}

// NewArgumentBuilder creates a new argument builder
func NewArgumentBuilder() *ArgumentBuilder {
	return &ArgumentBuilder{}
}

// Build resolves every constructor input from raw, keyed by input name. All
// inputs are checked for presence before any of them is converted. A list
// made only of separators counts as missing.
func (b *ArgumentBuilder) Build(inputs []models.ConstructorInput, raw map[string]string) ([]any, error) {
	for _, input := range inputs {
		value := strings.TrimSpace(raw[input.Name])
		if value == "" || (strings.HasSuffix(input.SolidityType, "[]") && len(splitList(value)) == 0) {
			return nil, fmt.Errorf("%w: %s (%s)", domain.ErrMissingArgument, input.Name, input.SolidityType)
		}
	}

	args := make([]any, 0, len(inputs))
	for _, input := range inputs {
		value, err := b.convert(input, strings.TrimSpace(raw[input.Name]))
		if err != nil {
			return nil, err
		}
		args = append(args, value)
	}
	return args, nil
}

func (b *ArgumentBuilder) convert(input models.ConstructorInput, value string) (any, error) {
	typ, err := abi.NewType(canonicalType(input.SolidityType), "", nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: unsupported type %s: %v", domain.ErrInvalidArgument, input.Name, input.SolidityType, err)
	}

	if typ.T != abi.SliceTy {
		v, err := convertScalar(typ, value)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", domain.ErrInvalidArgument, input.Name, err)
		}
		return v, nil
	}

	elems := splitList(value)
	slice := reflect.MakeSlice(typ.GetType(), 0, len(elems))
	for i, elem := range elems {
		v, err := convertScalar(*typ.Elem, elem)
		if err != nil {
			return nil, fmt.Errorf("%w: %s[%d]: %v", domain.ErrInvalidArgument, input.Name, i, err)
		}
		slice = reflect.Append(slice, reflect.ValueOf(v))
	}
	return slice.Interface(), nil
}

// canonicalType expands the bare int/uint aliases, which the ABI parser rejects
func canonicalType(t string) string {
	base, suffix, _ := strings.Cut(t, "[")
	if base == "uint" || base == "int" {
		base += "256"
	}
	if suffix != "" {
		return base + "[" + suffix
	}
	return base
}

// splitList splits a comma separated list, trimming and dropping empty entries
func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func convertScalar(typ abi.Type, value string) (any, error) {
	switch typ.T {
	case abi.UintTy, abi.IntTy:
		return convertInteger(typ, value)

	case abi.BoolTy:
		switch value {
		case "true":
			return true, nil
		case "false":
			return false, nil
		}
		return nil, fmt.Errorf("%q is not a bool, use true or false", value)

	case abi.AddressTy:
		if !addressPattern.MatchString(value) {
			return nil, fmt.Errorf("%q is not a valid address", value)
		}
		return common.HexToAddress(value), nil

	case abi.StringTy:
		return value, nil

	case abi.BytesTy:
		data, err := hexutil.Decode(value)
		if err != nil {
			return nil, fmt.Errorf("%q is not 0x-prefixed hex: %v", value, err)
		}
		return data, nil

	case abi.FixedBytesTy:
		data, err := hexutil.Decode(value)
		if err != nil {
			return nil, fmt.Errorf("%q is not 0x-prefixed hex: %v", value, err)
		}
		if len(data) != typ.Size {
			return nil, fmt.Errorf("expected %d bytes, got %d", typ.Size, len(data))
		}
		arr := reflect.New(typ.GetType()).Elem()
		reflect.Copy(arr, reflect.ValueOf(data))
		return arr.Interface(), nil

	default:
		return nil, fmt.Errorf("type %s is not supported", typ.String())
	}
}

func convertInteger(typ abi.Type, value string) (any, error) {
	n, err := parseInteger(value)
	if err != nil {
		return nil, err
	}

	if typ.T == abi.UintTy {
		if n.Sign() < 0 || n.BitLen() > typ.Size {
			return nil, fmt.Errorf("%s out of range for %s", n, typ.String())
		}
	} else {
		limit := new(big.Int).Lsh(big.NewInt(1), uint(typ.Size-1))
		minimum := new(big.Int).Neg(limit)
		maximum := new(big.Int).Sub(limit, big.NewInt(1))
		if n.Cmp(minimum) < 0 || n.Cmp(maximum) > 0 {
			return nil, fmt.Errorf("%s out of range for %s", n, typ.String())
		}
	}

	goType := typ.GetType()
	switch {
	case goType == bigIntType:
		return n, nil
	case typ.T == abi.UintTy:
		return reflect.ValueOf(n.Uint64()).Convert(goType).Interface(), nil
	default:
		return reflect.ValueOf(n.Int64()).Convert(goType).Interface(), nil
	}
}

// parseInteger accepts signed decimal and unsigned 0x, 0o or 0b prefixed
// integers. Digit separators are rejected.
func parseInteger(value string) (*big.Int, error) {
	digits, base := value, 10
	if len(value) > 2 && value[0] == '0' {
		switch value[1] {
		case 'x', 'X':
			digits, base = value[2:], 16
		case 'o', 'O':
			digits, base = value[2:], 8
		case 'b', 'B':
			digits, base = value[2:], 2
		}
	}
	if strings.Contains(digits, "_") || strings.HasPrefix(digits, "+") || (base != 10 && strings.HasPrefix(digits, "-")) {
		return nil, fmt.Errorf("%q is not a number", value)
	}
	n, ok := new(big.Int).SetString(digits, base)
	if !ok {
		return nil, fmt.Errorf("%q is not a number", value)
	}
	return n, nil
}

// Literals renders resolved arguments back to the strings a user would type.
// inputs give the solidity type of each value, since []uint8 and bytes share
// a Go type.
func (b *ArgumentBuilder) Literals(inputs []models.ConstructorInput, values []any) []string {
	out := make([]string, len(values))
	for i, v := range values {
		var typ *abi.Type
		if i < len(inputs) {
			if t, err := abi.NewType(canonicalType(inputs[i].SolidityType), "", nil); err == nil {
				typ = &t
			}
		}
		out[i] = formatValue(typ, reflect.ValueOf(v))
	}
	return out
}

// formatValue renders v as its solidity type typ. Without a type the value
// is rendered by its Go type alone.
func formatValue(typ *abi.Type, v reflect.Value) string {
	if !v.IsValid() {
		return ""
	}

	if typ != nil {
		switch typ.T {
		case abi.BytesTy, abi.FixedBytesTy:
			if v.Kind() == reflect.Slice || v.Kind() == reflect.Array {
				data := make([]byte, v.Len())
				reflect.Copy(reflect.ValueOf(data), v)
				return hexutil.Encode(data)
			}
		case abi.SliceTy, abi.ArrayTy:
			if v.Kind() == reflect.Slice || v.Kind() == reflect.Array {
				return formatList(typ.Elem, v)
			}
		}
	}

	switch value := v.Interface().(type) {
	case *big.Int:
		return value.String()
	case common.Address:
		return value.Hex()
	case bool:
		return strconv.FormatBool(value)
	case string:
		return value
	}

	if v.Kind() == reflect.Slice || v.Kind() == reflect.Array {
		return formatList(nil, v)
	}
	return fmt.Sprint(v.Interface())
}

func formatList(elem *abi.Type, v reflect.Value) string {
	parts := make([]string, v.Len())
	for i := range parts {
		parts[i] = formatValue(elem, v.Index(i))
	}
	return strings.Join(parts, ",")
}
