package router

type CompareOp byte

const CmpEq CompareOp = 1
const CmpNe CompareOp = 2
const CmpGt CompareOp = 3
const CmpGe CompareOp = 4
const CmpLt CompareOp = 5
const CmpLe CompareOp = 6

// Evaluate compares lhs against rhs. Adding an operator means extending the
// CompareOp constants and this switch, nothing else.
func Evaluate(lhs uint64, rhs uint64, op CompareOp) (bool, error) {
	switch op {
	case CmpEq:
		return lhs == rhs, nil
	case CmpNe:
		return lhs != rhs, nil
	case CmpGt:
		return lhs > rhs, nil
	case CmpGe:
		return lhs >= rhs, nil
	case CmpLt:
		return lhs < rhs, nil
	case CmpLe:
		return lhs <= rhs, nil
	}
	return false, ErrBadCompareOp
}

// Check turns a failed predicate into the given abort reason.
func Check(ok bool, reason error) error {
	if ok {
		return nil
	}
	return reason
}
