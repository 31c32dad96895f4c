package cryptid

// ValidationResult is the outcome of a yes/no cryptographic check such as an
// on-curve test, a signature verification or access-structure satisfaction.
// It is not an error: a failed check is an expected result.
type ValidationResult int

const (
	ValidationFailure ValidationResult = iota
	ValidationSuccess
)

// ValidationFrom converts a boolean check into a ValidationResult.
func ValidationFrom(ok bool) ValidationResult {
	if ok {
		return ValidationSuccess
	}
	return ValidationFailure
}

// OK reports whether the check passed.
func (v ValidationResult) OK() bool { return v == ValidationSuccess }

func (v ValidationResult) String() string {
	if v == ValidationSuccess {
		return "SUCCESS"
	}
	return "FAILURE"
}
