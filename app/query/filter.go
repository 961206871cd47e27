package query

// ApplyFilters keeps the records that satisfy every active condition.
// Conditions with an empty operand, or naming a column the schema does not
// know, are skipped. When no condition is active the input is returned as is.
func ApplyFilters[R any](records []R, conditions []FilterCondition, schema *Schema[R]) []R {
	type boundCondition struct {
		get      func(R) any
		operator Operator
		operand  any
	}

	bound := make([]boundCondition, 0, len(conditions))
	for _, cond := range conditions {
		if !cond.Active() {
			continue
		}
		col, ok := schema.Column(cond.Field)
		if !ok {
			continue
		}
		bound = append(bound, boundCondition{get: col.Get, operator: cond.Operator, operand: cond.Operand})
	}

	if len(bound) == 0 {
		return records
	}

	filtered := make([]R, 0, len(records)/2)
	for _, rec := range records {
		keep := true
		for _, bc := range bound {
			if !Evaluate(bc.get(rec), bc.operator, bc.operand) {
				keep = false
				break
			}
		}
		if keep {
			filtered = append(filtered, rec)
		}
	}
	return filtered
}
