package remote

// Operator is a row filter comparison understood by every Store.
type Operator string

const (
	OpEq Operator = "eq"
	OpIn Operator = "in"
)

type Filter struct {
	Column string
	Op     Operator
	Values []string
}

type Order struct {
	Column     string
	Descending bool
}

// Query describes a single row-oriented read: one table, a column selection
// and conjunctive equality / in-set filters.
type Query struct {
	Table   string
	Columns []string
	Filters []Filter
	Orders  []Order
}

func From(table string) Query {
	return Query{Table: table}
}

func (q Query) Select(columns ...string) Query {
	q.Columns = append(append([]string(nil), q.Columns...), columns...)
	return q
}

func (q Query) Eq(column, value string) Query {
	return q.with(Filter{Column: column, Op: OpEq, Values: []string{value}})
}

func (q Query) In(column string, values []string) Query {
	return q.with(Filter{Column: column, Op: OpIn, Values: append([]string(nil), values...)})
}

func (q Query) OrderBy(column string, descending bool) Query {
	q.Orders = append(append([]Order(nil), q.Orders...), Order{Column: column, Descending: descending})
	return q
}

func (q Query) with(filter Filter) Query {
	q.Filters = append(append([]Filter(nil), q.Filters...), filter)
	return q
}

// SelectExpr returns the column list, "*" when none was requested.
func (q Query) SelectExpr() []string {
	if len(q.Columns) == 0 {
		return []string{"*"}
	}
	return q.Columns
}
