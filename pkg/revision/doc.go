// Package revision models values that change across budget revisions.
//
// A budget dataset describes each amount, color or label either once for all
// revisions or once per revision. The input format is loose: a field may be a
// plain scalar, a (possibly short) list indexed by revision position, or an
// object keyed by revision id. [Value] captures that as an explicit tagged
// variant so the rest of the system never inspects runtime shapes:
//
//	Scalar   7                   same value at every revision
//	List     [1, 2]              index by position, last element repeats
//	ByID     {"m1": 5, "m3": 9}  keyed by revision id, forward-filled
//
// [Value.Densify] turns any variant into a dense list with one entry per
// revision, and [Value.Resolve] reads the value at a revision index with
// clamping. After dataset normalization only scalars and dense lists remain.
package revision
