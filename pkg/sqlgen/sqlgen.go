// Package sqlgen generates parameterized MSSQL statements for the common
// write shapes: INSERT, DELETE by key, and MERGE (upsert). Generated text
// uses @pN markers in declaration order, ready for Command execution.
package sqlgen

import (
	"fmt"
	"strings"
)

// Insert builds an INSERT statement for the given columns.
//
//	Insert("Account", "Id", "Name")
//	=> INSERT INTO [Account] ([Id],[Name]) VALUES (@p1,@p2);
func Insert(table string, columns ...string) string {
	cols := make([]string, len(columns))
	vals := make([]string, len(columns))
	for i, c := range columns {
		cols[i] = bracket(c)
		vals[i] = fmt.Sprintf("@p%d", i+1)
	}

	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s);",
		bracket(table), strings.Join(cols, ","), strings.Join(vals, ","))
}

// Delete builds a DELETE statement keyed on the given columns.
//
//	Delete("Account", "Id")
//	=> DELETE FROM [Account] WHERE [Id] = @p1;
func Delete(table string, keys ...string) string {
	where := make([]string, len(keys))
	for i, k := range keys {
		where[i] = fmt.Sprintf("%s = @p%d", bracket(k), i+1)
	}

	return fmt.Sprintf("DELETE FROM %s WHERE %s;",
		bracket(table), strings.Join(where, " AND "))
}

// Merge builds a MERGE (upsert) statement: rows matched on keys are
// updated with fields, unmatched rows are inserted. Parameter order is
// keys first, then fields.
func Merge(table string, keys, fields []string) string {
	n := 0

	sel := make([]string, len(keys))
	on := make([]string, len(keys))
	for i, k := range keys {
		n++
		sel[i] = fmt.Sprintf("@p%d AS %s", n, bracket(k))
		on[i] = fmt.Sprintf("s.%s = t.%s", bracket(k), bracket(k))
	}

	set := make([]string, len(fields))
	for i, f := range fields {
		n++
		set[i] = fmt.Sprintf("t.%s = @p%d", bracket(f), n)
	}

	insertCols := make([]string, 0, n)
	insertVals := make([]string, 0, n)
	for i, c := range append(append([]string{}, keys...), fields...) {
		insertCols = append(insertCols, bracket(c))
		insertVals = append(insertVals, fmt.Sprintf("@p%d", i+1))
	}

	return fmt.Sprintf(
		"MERGE INTO %s AS t\n"+
			"USING (SELECT %s) AS s ON %s\n"+
			"WHEN MATCHED THEN UPDATE SET %s\n"+
			"WHEN NOT MATCHED THEN INSERT (%s) VALUES (%s);",
		bracket(table),
		strings.Join(sel, ","),
		strings.Join(on, " AND "),
		strings.Join(set, ","),
		strings.Join(insertCols, ","),
		strings.Join(insertVals, ","),
	)
}

// bracket квотирует идентификатор; закрывающая скобка внутри имени
// удваивается по правилам T-SQL.
func bracket(name string) string {
	return "[" + strings.ReplaceAll(name, "]", "]]") + "]"
}
