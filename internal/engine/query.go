package engine

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"lattice-cms/internal/schema"
	"lattice-cms/internal/store"
	"lattice-cms/internal/template"
)

type QueryPlan struct {
	Def     *template.TemplateDefinition
	Table   *schema.TableSpec
	Filters []WhereClause
	Sorts   []OrderClause
	Page    int
	PerPage int
	Full    bool // replace file ids with full file records
}

type WhereClause struct {
	Field    string
	Operator string
	Value    any
}

type OrderClause struct {
	Field string
	Dir   string // ASC or DESC
}

type QueryResult struct {
	SQL    string
	Params []any
}

// ParseQueryParams parses Fiber query parameters into a QueryPlan. Filters
// and sorts are validated against the compiled base table so only physical
// columns reach the SQL.
func ParseQueryParams(c *fiber.Ctx, def *template.TemplateDefinition, table *schema.TableSpec) (*QueryPlan, error) {
	plan := &QueryPlan{
		Def:     def,
		Table:   table,
		Page:    1,
		PerPage: 25,
	}

	// Parse filters: filter[field]=val or filter[field.op]=val
	for key, val := range c.Queries() {
		if !strings.HasPrefix(key, "filter[") || !strings.HasSuffix(key, "]") {
			continue
		}
		inner := key[7 : len(key)-1]
		field, op := parseFilterKey(inner)

		col := columnSpec(table, field)
		if col == nil {
			return nil, &AppError{
				Code:    "UNKNOWN_FIELD",
				Status:  400,
				Message: fmt.Sprintf("Unknown filter field: %s", field),
			}
		}

		coerced, err := coerceValue(col, val, op)
		if err != nil {
			return nil, BadRequestError(fmt.Sprintf("Invalid filter value for %s: %v", field, err))
		}

		plan.Filters = append(plan.Filters, WhereClause{Field: col.Name, Operator: op, Value: coerced})
	}

	// Parse sort: sort=-created_at,title
	if sortParam := c.Query("sort"); sortParam != "" {
		for _, part := range strings.Split(sortParam, ",") {
			part = strings.TrimSpace(part)
			dir := "ASC"
			field := part
			if strings.HasPrefix(part, "-") {
				dir = "DESC"
				field = part[1:]
			}
			col := columnSpec(table, field)
			if col == nil {
				return nil, &AppError{
					Code:    "UNKNOWN_FIELD",
					Status:  400,
					Message: fmt.Sprintf("Unknown sort field: %s", field),
				}
			}
			plan.Sorts = append(plan.Sorts, OrderClause{Field: col.Name, Dir: dir})
		}
	}

	// Parse pagination
	if p := c.Query("page"); p != "" {
		if v, err := strconv.Atoi(p); err == nil && v > 0 {
			plan.Page = v
		}
	}
	if pp := c.Query("per_page"); pp != "" {
		if v, err := strconv.Atoi(pp); err == nil && v > 0 {
			plan.PerPage = v
			if plan.PerPage > 100 {
				plan.PerPage = 100
			}
		}
	}

	if full := c.Query("full"); full != "" {
		plan.Full, _ = strconv.ParseBool(full)
	}

	return plan, nil
}

// BuildSelectSQL builds a parameterized SELECT statement from the query plan.
func BuildSelectSQL(plan *QueryPlan, dialect store.Dialect) QueryResult {
	pb := dialect.NewParamBuilder()

	var where []string
	for _, f := range plan.Filters {
		where = append(where, buildWhereClause(f, pb, dialect))
	}

	sql := fmt.Sprintf("SELECT %s FROM %s",
		strings.Join(plan.Table.ColumnNames(), ", "), plan.Table.Name)
	if len(where) > 0 {
		sql += " WHERE " + strings.Join(where, " AND ")
	}

	if len(plan.Sorts) > 0 {
		var orderParts []string
		for _, s := range plan.Sorts {
			orderParts = append(orderParts, fmt.Sprintf("%s %s", s.Field, s.Dir))
		}
		sql += " ORDER BY " + strings.Join(orderParts, ", ")
	}

	limit := pb.Add(plan.PerPage)
	offset := pb.Add((plan.Page - 1) * plan.PerPage)
	sql += fmt.Sprintf(" LIMIT %s OFFSET %s", limit, offset)

	return QueryResult{SQL: sql, Params: pb.Params()}
}

// BuildCountSQL builds a COUNT query with the same filters as the select.
func BuildCountSQL(plan *QueryPlan, dialect store.Dialect) QueryResult {
	pb := dialect.NewParamBuilder()

	var where []string
	for _, f := range plan.Filters {
		where = append(where, buildWhereClause(f, pb, dialect))
	}

	sql := fmt.Sprintf("SELECT COUNT(*) AS count FROM %s", plan.Table.Name)
	if len(where) > 0 {
		sql += " WHERE " + strings.Join(where, " AND ")
	}

	return QueryResult{SQL: sql, Params: pb.Params()}
}

func buildWhereClause(f WhereClause, pb store.ParamBuilder, dialect store.Dialect) string {
	switch f.Operator {
	case "eq", "":
		return fmt.Sprintf("%s = %s", f.Field, pb.Add(f.Value))
	case "neq":
		return fmt.Sprintf("%s != %s", f.Field, pb.Add(f.Value))
	case "gt":
		return fmt.Sprintf("%s > %s", f.Field, pb.Add(f.Value))
	case "gte":
		return fmt.Sprintf("%s >= %s", f.Field, pb.Add(f.Value))
	case "lt":
		return fmt.Sprintf("%s < %s", f.Field, pb.Add(f.Value))
	case "lte":
		return fmt.Sprintf("%s <= %s", f.Field, pb.Add(f.Value))
	case "in":
		values, _ := f.Value.([]any)
		return dialect.InExpr(f.Field, pb, values)
	case "like":
		return fmt.Sprintf("%s LIKE %s", f.Field, pb.Add(f.Value))
	default:
		return fmt.Sprintf("%s = %s", f.Field, pb.Add(f.Value))
	}
}

// parseFilterKey splits "sort.gte" into ("sort", "gte") or "status" into ("status", "eq").
func parseFilterKey(key string) (string, string) {
	parts := strings.SplitN(key, ".", 2)
	if len(parts) == 2 {
		return parts[0], parts[1]
	}
	return key, "eq"
}

// columnSpec finds the physical column a query param refers to, normalizing
// the name the same way the compiler did.
func columnSpec(table *schema.TableSpec, field string) *schema.ColumnSpec {
	name := schema.Normalize(field)
	for i := range table.Columns {
		if table.Columns[i].Name == name {
			return &table.Columns[i]
		}
	}
	return nil
}

// coerceValue converts string query param values based on the column kind.
func coerceValue(col *schema.ColumnSpec, val string, op string) (any, error) {
	if op == "in" {
		parts := strings.Split(val, ",")
		coerced := make([]any, len(parts))
		for i, p := range parts {
			v, err := coerceSingleValue(col, strings.TrimSpace(p))
			if err != nil {
				return nil, err
			}
			coerced[i] = v
		}
		return coerced, nil
	}
	return coerceSingleValue(col, val)
}

func coerceSingleValue(col *schema.ColumnSpec, val string) (any, error) {
	switch col.Kind {
	case "integer":
		return strconv.Atoi(val)
	case "boolean":
		return strconv.ParseBool(val)
	default:
		return val, nil
	}
}
