package model

import "builder-generator/internal/common"

// Op identifies what a generated method does, independent of its name.
type Op int

const (
	OpNone Op = iota

	// Property mutators and accessors.
	OpSet          // SetX(v)
	OpSetOptional  // SetOptionalX(wrapper)
	OpSetNullable  // SetNullableX(*T)
	OpMap          // MapX(fn)
	OpClear        // ClearX()
	OpGet          // GetX() on the builder
	OpAdd          // AddX(e...)
	OpAddAll       // AddAllX(src)
	OpAddSeq       // AddXSeq(seq)
	OpRemove       // RemoveX(e) / RemoveX(k[, v])
	OpRemoveAll    // RemoveAllX(k)
	OpPut          // PutX(k, v)
	OpPutAll       // PutAllX(src)
	OpPutSeq       // PutXSeq(seq)
	OpAddCopies    // AddCopiesToX(e, n)
	OpSetCount     // SetCountOfX(e, n)
	OpMutate       // MutateX(fn)
	OpSetBuilder   // SetXBuilder(b)
	OpGetBuilder   // GetXBuilder()
	OpAddBuilder   // AddXBuilder(b), list of buildables
	OpValueGetter  // GetX() on Value and Partial
	OpFromComputed // unexported setter used by derived factories

	// Whole-builder operations.
	OpBuild
	OpBuildPartial
	OpClearAll
	OpMergeFrom
	OpMergeFromBuilder
	OpToBuilder
	OpEqual
	OpHash
	OpString
	OpMarshalJSON
	OpInit
)

var opNames = map[Op]string{
	OpNone:             "none",
	OpSet:              "set",
	OpSetOptional:      "set_optional",
	OpSetNullable:      "set_nullable",
	OpMap:              "map",
	OpClear:            "clear",
	OpGet:              "get",
	OpAdd:              "add",
	OpAddAll:           "add_all",
	OpAddSeq:           "add_seq",
	OpRemove:           "remove",
	OpRemoveAll:        "remove_all",
	OpPut:              "put",
	OpPutAll:           "put_all",
	OpPutSeq:           "put_seq",
	OpAddCopies:        "add_copies",
	OpSetCount:         "set_count",
	OpMutate:           "mutate",
	OpSetBuilder:       "set_builder",
	OpGetBuilder:       "get_builder",
	OpAddBuilder:       "add_builder",
	OpValueGetter:      "value_getter",
	OpFromComputed:     "from_computed",
	OpBuild:            "build",
	OpBuildPartial:     "build_partial",
	OpClearAll:         "clear_all",
	OpMergeFrom:        "merge_from",
	OpMergeFromBuilder: "merge_from_builder",
	OpToBuilder:        "to_builder",
	OpEqual:            "equal",
	OpHash:             "hash",
	OpString:           "string",
	OpMarshalJSON:      "marshal_json",
	OpInit:             "init",
}

// String returns a human-readable representation of the Op.
func (o Op) String() string {
	if s, ok := opNames[o]; ok {
		return s
	}

	return common.UnknownStr
}

// Fails reports whether methods performing o may return an error.
func (o Op) Fails() bool {
	return o == OpBuild
}
