package entities

import "strings"

// ClassFlags mirrors the host's class entry flag word.
type ClassFlags uint32

const (
	ClassInterface        ClassFlags = 1 << 0
	ClassTrait            ClassFlags = 1 << 1
	ClassAnonymous        ClassFlags = 1 << 2
	ClassImplicitAbstract ClassFlags = 1 << 4
	ClassFinal            ClassFlags = 1 << 5
	ClassExplicitAbstract ClassFlags = 1 << 6
	ClassReadonly         ClassFlags = 1 << 16
	ClassLinked           ClassFlags = 1 << 3
	ClassEnum             ClassFlags = 1 << 28
)

var classFlagNames = []struct {
	flag ClassFlags
	name string
}{
	{ClassInterface, "interface"},
	{ClassTrait, "trait"},
	{ClassAnonymous, "anonymous"},
	{ClassLinked, "linked"},
	{ClassImplicitAbstract, "implicit_abstract"},
	{ClassFinal, "final"},
	{ClassExplicitAbstract, "abstract"},
	{ClassReadonly, "readonly"},
	{ClassEnum, "enum"},
}

// Contains reports whether every bit of other is set in f.
func (f ClassFlags) Contains(other ClassFlags) bool {
	return f&other == other
}

// IsAbstract reports whether the class cannot be instantiated because it is
// abstract, either explicitly or through unimplemented methods.
func (f ClassFlags) IsAbstract() bool {
	return f&(ClassExplicitAbstract|ClassImplicitAbstract) != 0
}

// Instantiable reports whether objects of the class may be constructed directly.
func (f ClassFlags) Instantiable() bool {
	return f&(ClassInterface|ClassTrait|ClassEnum) == 0 && !f.IsAbstract()
}

func (f ClassFlags) String() string {
	if f == 0 {
		return "none"
	}
	var parts []string
	for _, n := range classFlagNames {
		if f&n.flag != 0 {
			parts = append(parts, n.name)
		}
	}
	return strings.Join(parts, "|")
}

// ErrorType is the kind of a host diagnostic event.
type ErrorType int32

const (
	EError            ErrorType = 1 << 0
	EWarning          ErrorType = 1 << 1
	EParse            ErrorType = 1 << 2
	ENotice           ErrorType = 1 << 3
	ECoreError        ErrorType = 1 << 4
	ECoreWarning      ErrorType = 1 << 5
	ECompileError     ErrorType = 1 << 6
	ECompileWarning   ErrorType = 1 << 7
	EUserError        ErrorType = 1 << 8
	EUserWarning      ErrorType = 1 << 9
	EUserNotice       ErrorType = 1 << 10
	EStrict           ErrorType = 1 << 11
	ERecoverableError ErrorType = 1 << 12
	EDeprecated       ErrorType = 1 << 13
	EUserDeprecated   ErrorType = 1 << 14

	EAll = EError | EWarning | EParse | ENotice | ECoreError | ECoreWarning |
		ECompileError | ECompileWarning | EUserError | EUserWarning | EUserNotice |
		ERecoverableError | EDeprecated | EUserDeprecated
	// EFatal groups the kinds that stop script execution.
	EFatal = EError | ECoreError | ECompileError | EUserError | ERecoverableError | EParse
)

var errorTypeNames = map[ErrorType]string{
	EError:            "E_ERROR",
	EWarning:          "E_WARNING",
	EParse:            "E_PARSE",
	ENotice:           "E_NOTICE",
	ECoreError:        "E_CORE_ERROR",
	ECoreWarning:      "E_CORE_WARNING",
	ECompileError:     "E_COMPILE_ERROR",
	ECompileWarning:   "E_COMPILE_WARNING",
	EUserError:        "E_USER_ERROR",
	EUserWarning:      "E_USER_WARNING",
	EUserNotice:       "E_USER_NOTICE",
	EStrict:           "E_STRICT",
	ERecoverableError: "E_RECOVERABLE_ERROR",
	EDeprecated:       "E_DEPRECATED",
	EUserDeprecated:   "E_USER_DEPRECATED",
}

func (t ErrorType) String() string {
	if name, ok := errorTypeNames[t]; ok {
		return name
	}
	if t == EAll {
		return "E_ALL"
	}
	return "E_UNKNOWN"
}

// IsFatal reports whether the event stops script execution.
func (t ErrorType) IsFatal() bool {
	return t&EFatal != 0
}

// DataType is the declared type of a function argument or return value.
type DataType uint8

const (
	TypeMixed DataType = iota
	TypeNull
	TypeBool
	TypeLong
	TypeDouble
	TypeString
	TypeArray
	TypeObject
	TypeCallable
	TypeIterable
	TypeVoid
)

var dataTypeNames = [...]string{
	TypeMixed:    "mixed",
	TypeNull:     "null",
	TypeBool:     "bool",
	TypeLong:     "int",
	TypeDouble:   "float",
	TypeString:   "string",
	TypeArray:    "array",
	TypeObject:   "object",
	TypeCallable: "callable",
	TypeIterable: "iterable",
	TypeVoid:     "void",
}

func (d DataType) String() string {
	if int(d) < len(dataTypeNames) {
		return dataTypeNames[d]
	}
	return "unknown"
}

// ParseDataType maps a declared type name to a DataType.
func ParseDataType(name string) (DataType, bool) {
	for i, n := range dataTypeNames {
		if n == name {
			return DataType(i), true
		}
	}
	return TypeMixed, false
}
