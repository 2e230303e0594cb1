package generator

import (
	"fmt"
	"strings"
)

// Supported SQL dialects.
const (
	DialectSQLite     = "sqlite"
	DialectPostgreSQL = "postgresql"
	DialectMySQL      = "mysql"
	DialectMariaDB    = "mariadb"
	DialectMSSQL      = "mssql"
)

// Dialects lists the accepted dialect names.
var Dialects = []string{DialectSQLite, DialectPostgreSQL, DialectMySQL, DialectMariaDB, DialectMSSQL}

type dialect struct {
	name     string
	open     string
	close    string
	types    map[string]string
	identity string // surrogate key column type
	varchar  string // printf pattern taking a length
	// inlineFK keeps foreign keys inside CREATE TABLE; otherwise they are
	// added with ALTER TABLE once every table exists.
	inlineFK bool
}

func (d *dialect) quote(ident string) string {
	return d.open + strings.ReplaceAll(ident, d.close, d.close+d.close) + d.close
}

func (d *dialect) quoteAll(idents []string) string {
	out := make([]string, len(idents))
	for i, id := range idents {
		out[i] = d.quote(id)
	}
	return strings.Join(out, ", ")
}

func (d *dialect) varcharOf(n int) string {
	return fmt.Sprintf(d.varchar, n)
}

var mysqlTypes = map[string]string{
	"str":       "VARCHAR(255)",
	"int":       "INT",
	"float":     "DOUBLE",
	"bool":      "BOOLEAN",
	"time":      "TIME",
	"date":      "DATE",
	"datetime":  "DATETIME",
	"timedelta": "BIGINT",
	"any":       "JSON",
}

func withType(base map[string]string, name, typ string) map[string]string {
	out := make(map[string]string, len(base))
	for k, v := range base {
		out[k] = v
	}
	out[name] = typ
	return out
}

var dialects = map[string]*dialect{
	DialectSQLite: {
		name: DialectSQLite, open: `"`, close: `"`,
		types: map[string]string{
			"str":       "TEXT",
			"int":       "INTEGER",
			"float":     "REAL",
			"bool":      "BOOLEAN",
			"time":      "TIME",
			"date":      "DATE",
			"datetime":  "DATETIME",
			"timedelta": "INTEGER",
			"any":       "BLOB",
		},
		identity: "INTEGER",
		varchar:  "VARCHAR(%d)",
		inlineFK: true,
	},
	DialectPostgreSQL: {
		name: DialectPostgreSQL, open: `"`, close: `"`,
		types: map[string]string{
			"str":       "VARCHAR(255)",
			"int":       "INTEGER",
			"float":     "DOUBLE PRECISION",
			"bool":      "BOOLEAN",
			"time":      "TIME",
			"date":      "DATE",
			"datetime":  "TIMESTAMP",
			"timedelta": "INTERVAL",
			"any":       "JSONB",
		},
		identity: "INTEGER GENERATED BY DEFAULT AS IDENTITY",
		varchar:  "VARCHAR(%d)",
	},
	DialectMySQL: {
		name: DialectMySQL, open: "`", close: "`",
		types:    mysqlTypes,
		identity: "INT AUTO_INCREMENT",
		varchar:  "VARCHAR(%d)",
	},
	DialectMariaDB: {
		name: DialectMariaDB, open: "`", close: "`",
		types:    withType(mysqlTypes, "any", "LONGTEXT"),
		identity: "INT AUTO_INCREMENT",
		varchar:  "VARCHAR(%d)",
	},
	DialectMSSQL: {
		name: DialectMSSQL, open: "[", close: "]",
		types: map[string]string{
			"str":       "NVARCHAR(255)",
			"int":       "INT",
			"float":     "FLOAT",
			"bool":      "BIT",
			"time":      "TIME",
			"date":      "DATE",
			"datetime":  "DATETIME2",
			"timedelta": "BIGINT",
			"any":       "NVARCHAR(MAX)",
		},
		identity: "INT IDENTITY(1,1)",
		varchar:  "NVARCHAR(%d)",
	},
}

func lookupDialect(name string) (*dialect, error) {
	if name == "" {
		name = DialectSQLite
	}
	d, ok := dialects[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("unsupported SQL dialect %q (supported: %s)", name, strings.Join(Dialects, ", "))
	}
	return d, nil
}
