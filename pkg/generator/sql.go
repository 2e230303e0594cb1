package generator

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/aretw0/buml/pkg/domain"

	_ "modernc.org/sqlite"
)

// SQLGenerator emits CREATE TABLE statements for a relational mapping of
// the model: one table per class, joined-table inheritance, foreign keys
// for to-one associations and join tables for many-to-many associations
// and association classes.
type SQLGenerator struct {
	opts    Options
	dialect *dialect
}

// NewSQL returns a SQL generator for o.Dialect (sqlite when empty).
func NewSQL(o Options) (*SQLGenerator, error) {
	d, err := lookupDialect(o.Dialect)
	if err != nil {
		return nil, err
	}
	return &SQLGenerator{opts: o, dialect: d}, nil
}

// Dialect returns the resolved dialect name.
func (g *SQLGenerator) Dialect() string { return g.dialect.name }

// OutputFile implements SingleFile.
func (g *SQLGenerator) OutputFile() string {
	return "tables_" + g.dialect.name + ".sql"
}

// Generate implements Generator.
func (g *SQLGenerator) Generate(ctx context.Context, m *domain.DomainModel, dir string) ([]string, error) {
	if len(m.Classes()) == 0 {
		return nil, nil
	}
	stmts, err := g.Statements(m)
	if err != nil {
		return nil, err
	}
	if g.opts.ValidateSQL && g.dialect.name == DialectSQLite {
		if err := validateSQLite(ctx, stmts); err != nil {
			return nil, err
		}
		g.opts.logger().Debug("Generated SQL validated", "statements", len(stmts))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "-- Tables for domain model '%s' (%s)\n\n", m.Name, g.dialect.name)
	for _, s := range stmts {
		b.WriteString(s)
		b.WriteString("\n\n")
	}
	path, err := writeFile(dir, g.OutputFile(), []byte(b.String()))
	if err != nil {
		return nil, err
	}
	return []string{path}, nil
}

// Statements returns the DDL statements for m, each terminated by a semicolon.
func (g *SQLGenerator) Statements(m *domain.DomainModel) ([]string, error) {
	s := newSchema(g.dialect, m)
	if err := s.build(); err != nil {
		return nil, err
	}
	return s.render(), nil
}

type column struct {
	name    string
	typ     string
	notNull bool
	check   string
}

type foreignKey struct {
	name     string
	cols     []string
	refTable string
	refCols  []string
	cascade  bool
}

type table struct {
	name    string
	cols    []column
	pk      []string
	uniques [][]string
	fks     []foreignKey
}

func (t *table) hasColumn(name string) bool {
	for _, c := range t.cols {
		if c.name == name {
			return true
		}
	}
	return false
}

func (t *table) addColumn(c column) error {
	if t.hasColumn(c.name) {
		return fmt.Errorf("table %s: duplicate column %s", t.name, c.name)
	}
	t.cols = append(t.cols, c)
	return nil
}

type schema struct {
	d       *dialect
	m       *domain.DomainModel
	tables  []*table
	byClass map[*domain.Class]*table
	keys    map[*domain.Class][]column
	// joinClass maps an association class to its association.
	joinClass map[*domain.Class]*domain.BinaryAssociation
}

func newSchema(d *dialect, m *domain.DomainModel) *schema {
	s := &schema{
		d:         d,
		m:         m,
		byClass:   make(map[*domain.Class]*table),
		keys:      make(map[*domain.Class][]column),
		joinClass: make(map[*domain.Class]*domain.BinaryAssociation),
	}
	for _, ac := range m.AssociationClasses() {
		if ac.Association != nil {
			s.joinClass[&ac.Class] = ac.Association
		}
	}
	return s
}

func (s *schema) columnType(t domain.Type) string {
	switch v := t.(type) {
	case *domain.Enumeration:
		n := 1
		for _, l := range v.Literals {
			if len(l.Name) > n {
				n = len(l.Name)
			}
		}
		if s.d.name == DialectSQLite {
			return "TEXT"
		}
		return s.d.varcharOf(n)
	case *domain.PrimitiveDataType:
		if typ, ok := s.d.types[v.Name]; ok {
			return typ
		}
	}
	return s.d.types[domain.StringType]
}

func (s *schema) enumCheck(col string, t domain.Type) string {
	e, ok := t.(*domain.Enumeration)
	if !ok || len(e.Literals) == 0 {
		return ""
	}
	vals := make([]string, len(e.Literals))
	for i, l := range e.Literals {
		vals[i] = "'" + strings.ReplaceAll(l.Name, "'", "''") + "'"
	}
	return fmt.Sprintf("%s IN (%s)", s.d.quote(col), strings.Join(vals, ", "))
}

// surrogate reports whether c gets a generated integer key.
func (s *schema) surrogate(c *domain.Class) bool {
	if _, ok := s.joinClass[c]; ok {
		return false
	}
	return len(keyAttributes(c)) == 0 && len(s.m.Parents(c)) == 0 && idAttribute(c) == nil
}

// keyAttributes returns the identifying attributes that live in c's own
// table; multi-valued ones are stored in value tables.
func keyAttributes(c *domain.Class) []*domain.Property {
	var out []*domain.Property
	for _, p := range c.IDAttributes() {
		if !p.Multiplicity.IsMany() {
			out = append(out, p)
		}
	}
	return out
}

// idAttribute returns c's single-valued attribute named id, or nil.
func idAttribute(c *domain.Class) *domain.Property {
	p := c.Attribute("id")
	if p == nil || p.Multiplicity.IsMany() {
		return nil
	}
	return p
}

// key returns the primary key columns of c's table.
func (s *schema) key(c *domain.Class) []column {
	if k, ok := s.keys[c]; ok {
		return k
	}
	// Placeholder guards against pathological recursion.
	s.keys[c] = nil

	var k []column
	switch {
	case s.joinClass[c] != nil:
		a := s.joinClass[c]
		k = append(s.refColumns(joinPrefix(a.Ends[1]), a.Source()), s.refColumns(joinPrefix(a.Ends[0]), a.Target())...)
	case len(keyAttributes(c)) > 0:
		for _, p := range keyAttributes(c) {
			k = append(k, column{name: snakeCase(p.Name), typ: s.columnType(p.Type), notNull: true})
		}
	case len(s.m.Parents(c)) > 0:
		for _, pc := range s.key(s.m.Parents(c)[0]) {
			pc.check = ""
			k = append(k, pc)
		}
	case idAttribute(c) != nil:
		p := idAttribute(c)
		k = []column{{name: "id", typ: s.columnType(p.Type), notNull: true}}
	default:
		k = []column{{name: "id", typ: s.d.types[domain.IntegerType], notNull: true}}
	}
	s.keys[c] = k
	return k
}

// refColumns returns columns referencing target's key, prefixed.
func (s *schema) refColumns(prefix string, target *domain.Class) []column {
	var out []column
	for _, k := range s.key(target) {
		out = append(out, column{name: prefix + "_" + k.name, typ: k.typ})
	}
	return out
}

func joinPrefix(end *domain.Property) string {
	return snakeCase(end.Name)
}

func names(cols []column) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = c.name
	}
	return out
}

func (s *schema) build() error {
	for _, c := range orderedClasses(s.m) {
		if s.joinClass[c] != nil {
			continue
		}
		if err := s.classTable(c); err != nil {
			return err
		}
	}
	// Association classes first, so other associations can reference them.
	for _, ac := range s.m.AssociationClasses() {
		if ac.Association == nil {
			continue
		}
		if err := s.joinTable(ac.Association, ac); err != nil {
			return err
		}
	}
	for _, a := range s.m.Associations {
		if s.m.AssociationClassFor(a) != nil {
			continue
		}
		if err := s.association(a); err != nil {
			return err
		}
	}
	return nil
}

func (s *schema) classTable(c *domain.Class) error {
	t := &table{name: snakeCase(c.Name)}
	s.tables = append(s.tables, t)
	s.byClass[c] = t

	key := s.key(c)
	switch {
	case s.surrogate(c):
		t.cols = append(t.cols, column{name: "id", typ: s.d.identity, notNull: true})
	case len(keyAttributes(c)) == 0 && len(s.m.Parents(c)) > 0:
		t.cols = append(t.cols, key...)
		parent := s.m.Parents(c)[0]
		t.fks = append(t.fks, foreignKey{
			name:     "fk_" + t.name + "_" + snakeCase(parent.Name),
			cols:     names(key),
			refTable: snakeCase(parent.Name),
			refCols:  names(s.key(parent)),
			cascade:  true,
		})
	}
	t.pk = names(key)

	for _, p := range c.Attributes {
		if p.Multiplicity.IsMany() {
			if err := s.valueTable(c, p); err != nil {
				return err
			}
			continue
		}
		name := snakeCase(p.Name)
		if t.hasColumn(name) {
			continue
		}
		col := column{
			name:    name,
			typ:     s.columnType(p.Type),
			notNull: p.IsID || p.Multiplicity.IsRequired(),
			check:   s.enumCheck(name, p.Type),
		}
		if err := t.addColumn(col); err != nil {
			return err
		}
	}

	// Parents other than the one sharing the key are referenced through
	// prefixed columns.
	parents := s.m.Parents(c)
	if len(keyAttributes(c)) == 0 && len(parents) > 0 {
		parents = parents[1:]
	}
	for _, parent := range parents {
		prefix := snakeCase(parent.Name)
		refs := s.refColumns(prefix, parent)
		for i := range refs {
			refs[i].notNull = true
			if err := t.addColumn(refs[i]); err != nil {
				return err
			}
		}
		t.fks = append(t.fks, foreignKey{
			name:     "fk_" + t.name + "_" + prefix,
			cols:     names(refs),
			refTable: prefix,
			refCols:  names(s.key(parent)),
			cascade:  true,
		})
	}
	return nil
}

// valueTable stores a multi-valued attribute in its own table.
func (s *schema) valueTable(c *domain.Class, p *domain.Property) error {
	owner := snakeCase(c.Name)
	t := &table{name: owner + "_" + snakeCase(p.Name)}
	refs := s.refColumns(owner, c)
	for i := range refs {
		refs[i].notNull = true
	}
	t.cols = append(t.cols, refs...)
	value := column{
		name:    snakeCase(p.Name),
		typ:     s.columnType(p.Type),
		notNull: true,
		check:   s.enumCheck(snakeCase(p.Name), p.Type),
	}
	if err := t.addColumn(value); err != nil {
		return err
	}
	t.pk = append(names(refs), value.name)
	t.fks = append(t.fks, foreignKey{
		name:     "fk_" + t.name + "_" + owner,
		cols:     names(refs),
		refTable: owner,
		refCols:  names(s.key(c)),
		cascade:  true,
	})
	s.tables = append(s.tables, t)
	return nil
}

func (s *schema) association(a *domain.BinaryAssociation) error {
	if a.IsManyToMany() {
		return s.joinTable(a, nil)
	}

	toTarget, toSource := a.Ends[0], a.Ends[1]
	src, dst := s.byClass[a.Source()], s.byClass[a.Target()]
	if src == nil || dst == nil {
		return fmt.Errorf("association %s: end class has no table", a.Name)
	}

	oneToOne := !toTarget.Multiplicity.IsMany() && !toSource.Multiplicity.IsMany()
	if !toTarget.Multiplicity.IsMany() && !(oneToOne && toTarget.IsComposite) {
		// Each source row references at most one target.
		return s.reference(src, toTarget, a.Target(), oneToOne, false)
	}
	// Each target row references at most one source; composition cascades.
	return s.reference(dst, toSource, a.Source(), oneToOne, toTarget.IsComposite)
}

func (s *schema) reference(t *table, end *domain.Property, target *domain.Class, unique, cascade bool) error {
	prefix := snakeCase(end.Name)
	refs := s.refColumns(prefix, target)
	for i := range refs {
		refs[i].notNull = end.Multiplicity.IsRequired()
		if err := t.addColumn(refs[i]); err != nil {
			return err
		}
	}
	if unique {
		t.uniques = append(t.uniques, names(refs))
	}
	t.fks = append(t.fks, foreignKey{
		name:     "fk_" + t.name + "_" + prefix,
		cols:     names(refs),
		refTable: snakeCase(target.Name),
		refCols:  names(s.key(target)),
		cascade:  cascade,
	})
	return nil
}

func (s *schema) joinTable(a *domain.BinaryAssociation, ac *domain.AssociationClass) error {
	name := snakeCase(a.Name)
	if ac != nil {
		name = snakeCase(ac.Name)
	}
	t := &table{name: name}

	sides := []struct {
		end    *domain.Property
		target *domain.Class
	}{
		{a.Ends[1], a.Source()},
		{a.Ends[0], a.Target()},
	}
	for _, side := range sides {
		prefix := joinPrefix(side.end)
		refs := s.refColumns(prefix, side.target)
		for i := range refs {
			refs[i].notNull = true
			if err := t.addColumn(refs[i]); err != nil {
				return fmt.Errorf("association %s: %w", a.Name, err)
			}
		}
		t.pk = append(t.pk, names(refs)...)
		t.fks = append(t.fks, foreignKey{
			name:     "fk_" + name + "_" + prefix,
			cols:     names(refs),
			refTable: snakeCase(side.target.Name),
			refCols:  names(s.key(side.target)),
			cascade:  true,
		})
	}

	if ac != nil {
		s.byClass[&ac.Class] = t
		for _, p := range ac.Attributes {
			col := column{
				name:    snakeCase(p.Name),
				typ:     s.columnType(p.Type),
				notNull: p.IsID || p.Multiplicity.IsRequired(),
				check:   s.enumCheck(snakeCase(p.Name), p.Type),
			}
			if err := t.addColumn(col); err != nil {
				return err
			}
		}
	}
	s.tables = append(s.tables, t)
	return nil
}

func (s *schema) render() []string {
	var stmts, alters []string
	for _, t := range s.tables {
		var lines []string
		for _, c := range t.cols {
			line := "    " + s.d.quote(c.name) + " " + c.typ
			if c.notNull {
				line += " NOT NULL"
			}
			if c.check != "" {
				line += " CHECK (" + c.check + ")"
			}
			lines = append(lines, line)
		}
		if len(t.pk) > 0 {
			lines = append(lines, "    PRIMARY KEY ("+s.d.quoteAll(t.pk)+")")
		}
		for _, u := range t.uniques {
			lines = append(lines, "    UNIQUE ("+s.d.quoteAll(u)+")")
		}
		for _, fk := range t.fks {
			if s.d.inlineFK {
				lines = append(lines, "    "+s.fkClause(fk))
				continue
			}
			alters = append(alters, fmt.Sprintf("ALTER TABLE %s ADD %s;", s.d.quote(t.name), s.fkClause(fk)))
		}
		stmts = append(stmts, fmt.Sprintf("CREATE TABLE %s (\n%s\n);", s.d.quote(t.name), strings.Join(lines, ",\n")))
	}
	return append(stmts, alters...)
}

func (s *schema) fkClause(fk foreignKey) string {
	clause := fmt.Sprintf("CONSTRAINT %s FOREIGN KEY (%s) REFERENCES %s (%s)",
		s.d.quote(fk.name), s.d.quoteAll(fk.cols), s.d.quote(fk.refTable), s.d.quoteAll(fk.refCols))
	if fk.cascade {
		clause += " ON DELETE CASCADE"
	}
	return clause
}

// validateSQLite runs stmts against a throwaway in-memory database.
func validateSQLite(ctx context.Context, stmts []string) error {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return fmt.Errorf("open validation database: %w", err)
	}
	defer db.Close()
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		return fmt.Errorf("enable foreign keys: %w", err)
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("generated SQL failed validation: %w", err)
		}
	}
	return nil
}
