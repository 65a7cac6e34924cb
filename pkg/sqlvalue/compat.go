package sqlvalue

import "strings"

// CompatibleType reports whether a column of the given SQL type name can be
// decoded into the given native kind. kind is one of: "int8", "int16",
// "int32", "int64", "float32", "float64", "bool", "string", "bytes", "time",
// "uuid", "decimal". Unknown kinds report false.
func CompatibleType(sqlType, kind string) bool {
	t := strings.ToLower(sqlType)

	switch kind {
	case "int8":
		return t == "tinyint"
	case "int16":
		return t == "smallint"
	case "int32":
		return t == "int"
	case "int64":
		return t == "bigint"
	case "float32":
		return t == "real" || t == "smallmoney"
	case "float64":
		return t == "float" || t == "money"
	case "bool":
		return t == "bit"
	case "string":
		return t == "nvarchar" || t == "varchar" || t == "ntext" ||
			t == "text" || t == "nchar" || t == "char"
	case "bytes":
		return t == "varbinary" || t == "binary" || t == "image"
	case "time":
		return t == "date" || t == "datetime" || t == "datetime2" ||
			t == "datetimeoffset"
	case "uuid":
		return t == "uniqueidentifier"
	case "decimal":
		return t == "decimal" || t == "numeric"
	default:
		return false
	}
}
