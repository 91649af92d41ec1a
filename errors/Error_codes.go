package errors

import "fmt"

// ERR identifies the class of an Error.
type ERR int32

const (
	ERR_UNKNOWN             ERR = 0
	ERR_INVALID_ARGUMENT    ERR = 1
	ERR_ERROR               ERR = 2
	ERR_PROCESSING          ERR = 3
	ERR_CONFIGURATION       ERR = 4
	ERR_STORAGE_ERROR       ERR = 5
	ERR_BLOCK_INVALID       ERR = 6
	ERR_DIFFICULTY_INVALID  ERR = 7
	ERR_WORK_OVERFLOW       ERR = 8
	ERR_INVARIANT_VIOLATION ERR = 9
)

var (
	ERR_name = map[int32]string{
		0: "ERR_UNKNOWN",
		1: "ERR_INVALID_ARGUMENT",
		2: "ERR_ERROR",
		3: "ERR_PROCESSING",
		4: "ERR_CONFIGURATION",
		5: "ERR_STORAGE_ERROR",
		6: "ERR_BLOCK_INVALID",
		7: "ERR_DIFFICULTY_INVALID",
		8: "ERR_WORK_OVERFLOW",
		9: "ERR_INVARIANT_VIOLATION",
	}
	ERR_value = map[string]int32{
		"ERR_UNKNOWN":             0,
		"ERR_INVALID_ARGUMENT":    1,
		"ERR_ERROR":               2,
		"ERR_PROCESSING":          3,
		"ERR_CONFIGURATION":       4,
		"ERR_STORAGE_ERROR":       5,
		"ERR_BLOCK_INVALID":       6,
		"ERR_DIFFICULTY_INVALID":  7,
		"ERR_WORK_OVERFLOW":       8,
		"ERR_INVARIANT_VIOLATION": 9,
	}
)

func (e ERR) String() string {
	if name, ok := ERR_name[int32(e)]; ok {
		return name
	}

	return fmt.Sprintf("ERR(%d)", int32(e))
}
