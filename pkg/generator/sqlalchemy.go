package generator

import (
	"context"
	"fmt"
	"strings"

	"github.com/aretw0/buml/pkg/domain"
)

var sqlAlchemyTypes = map[string]string{
	domain.StringType:    "String(255)",
	domain.IntegerType:   "Integer",
	domain.FloatType:     "Float",
	domain.BooleanType:   "Boolean",
	domain.TimeType:      "Time",
	domain.DateType:      "Date",
	domain.DateTimeType:  "DateTime",
	domain.TimeDeltaType: "Interval",
	domain.AnyType:       "JSON",
}

// SQLAlchemyGenerator writes SQLAlchemy 2.0 declarative models. Every table
// gets an integer "id" primary key; subclasses share it with their first
// parent (joined-table inheritance).
type SQLAlchemyGenerator struct {
	opts Options
}

// OutputFile implements SingleFile.
func (*SQLAlchemyGenerator) OutputFile() string { return "sql_alchemy.py" }

type ormClass struct {
	columns       []string
	relationships []string
}

// Generate implements Generator.
func (g *SQLAlchemyGenerator) Generate(_ context.Context, m *domain.DomainModel, dir string) ([]string, error) {
	if len(m.Classes()) == 0 {
		return nil, nil
	}
	data := g.render(m)
	path, err := writeFile(dir, g.OutputFile(), []byte(data))
	if err != nil {
		return nil, err
	}
	return []string{path}, nil
}

func (g *SQLAlchemyGenerator) render(m *domain.DomainModel) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# SQLAlchemy models for domain model '%s'\n", m.Name)
	b.WriteString("import enum\n")
	b.WriteString("from datetime import date, datetime, time, timedelta\n")
	b.WriteString("from typing import Any, List, Optional\n\n")
	b.WriteString("from sqlalchemy import (\n    JSON, Boolean, Column, Date, DateTime, Enum, Float, ForeignKey, Integer,\n    Interval, String, Table, Time,\n)\n")
	b.WriteString("from sqlalchemy.orm import DeclarativeBase, Mapped, mapped_column, relationship\n\n\n")
	b.WriteString("class Base(DeclarativeBase):\n    pass\n")

	for _, e := range m.Enumerations() {
		fmt.Fprintf(&b, "\n\nclass %s(enum.Enum):\n", e.Name)
		if len(e.Literals) == 0 {
			b.WriteString("    pass\n")
		}
		for _, l := range e.Literals {
			fmt.Fprintf(&b, "    %s = %q\n", l.Name, l.Name)
		}
	}

	plan := make(map[*domain.Class]*ormClass)
	for _, c := range m.Classes() {
		plan[c] = &ormClass{}
	}
	var tables []string
	for _, a := range m.Associations {
		if m.AssociationClassFor(a) != nil {
			continue
		}
		if t := sqlAlchemyAssociation(a, plan); t != "" {
			tables = append(tables, t)
		}
	}
	for _, t := range tables {
		b.WriteString("\n\n" + t)
	}

	for _, c := range orderedClasses(m) {
		b.WriteString("\n\n")
		g.writeClass(&b, m, c, plan[c])
	}
	return b.String()
}

func sqlAlchemyColumnType(t domain.Type) (annotation, column string) {
	switch v := t.(type) {
	case *domain.Enumeration:
		return v.Name, "Enum(" + v.Name + ")"
	case *domain.PrimitiveDataType:
		return pythonType(v), sqlAlchemyTypes[v.Name]
	}
	return "str", "String(255)"
}

func optional(annotation string, required bool) string {
	if required {
		return annotation
	}
	return "Optional[" + annotation + "]"
}

func (g *SQLAlchemyGenerator) writeClass(b *strings.Builder, m *domain.DomainModel, c *domain.Class, plan *ormClass) {
	table := snakeCase(c.Name)
	base := "Base"
	parents := m.Parents(c)
	if len(parents) > 0 {
		base = parents[0].Name
	}
	fmt.Fprintf(b, "class %s(%s):\n", c.Name, base)
	fmt.Fprintf(b, "    __tablename__ = %q\n\n", table)

	if len(parents) > 0 {
		fmt.Fprintf(b, "    id: Mapped[int] = mapped_column(ForeignKey(%q), primary_key=True)\n", snakeCase(parents[0].Name)+".id")
	} else {
		b.WriteString("    id: Mapped[int] = mapped_column(primary_key=True)\n")
	}

	if ac, ok := assocClassOf(m, c); ok {
		a := ac.Association
		for _, side := range []struct {
			end    *domain.Property
			target *domain.Class
		}{{a.Ends[1], a.Source()}, {a.Ends[0], a.Target()}} {
			fmt.Fprintf(b, "    %s_id: Mapped[int] = mapped_column(ForeignKey(%q))\n",
				snakeCase(side.end.Name), snakeCase(side.target.Name)+".id")
		}
	}

	for _, p := range c.Attributes {
		if p.Name == "id" {
			continue
		}
		ann, col := sqlAlchemyColumnType(p.Type)
		if p.Multiplicity.IsMany() {
			fmt.Fprintf(b, "    %s: Mapped[List[%s]] = mapped_column(JSON)\n", snakeCase(p.Name), ann)
			continue
		}
		args := col
		if p.IsID {
			args += ", unique=True"
		}
		fmt.Fprintf(b, "    %s: Mapped[%s] = mapped_column(%s)\n", snakeCase(p.Name), optional(ann, p.Multiplicity.IsRequired()), args)
	}
	for _, line := range plan.columns {
		b.WriteString("    " + line + "\n")
	}
	if len(plan.relationships) > 0 {
		b.WriteString("\n")
	}
	for _, line := range plan.relationships {
		b.WriteString("    " + line + "\n")
	}
}

func assocClassOf(m *domain.DomainModel, c *domain.Class) (*domain.AssociationClass, bool) {
	for _, ac := range m.AssociationClasses() {
		if &ac.Class == c && ac.Association != nil {
			return ac, true
		}
	}
	return nil, false
}

// sqlAlchemyAssociation records the columns and relationships a realises and
// returns the secondary Table declaration for many-to-many associations.
func sqlAlchemyAssociation(a *domain.BinaryAssociation, plan map[*domain.Class]*ormClass) string {
	toTarget, toSource := a.Ends[0], a.Ends[1]
	src, dst := a.Source(), a.Target()

	backPop := func(other *domain.Property) string {
		if !other.IsNavigable {
			return ""
		}
		return fmt.Sprintf(", back_populates=%q", other.Name)
	}

	if a.IsManyToMany() {
		table := snakeCase(a.Name)
		srcCol := snakeCase(toSource.Name) + "_id"
		dstCol := snakeCase(toTarget.Name) + "_id"
		if toTarget.IsNavigable {
			plan[src].relationships = append(plan[src].relationships, fmt.Sprintf(
				"%s: Mapped[List[%q]] = relationship(secondary=%q%s)", toTarget.Name, dst.Name, table, backPop(toSource)))
		}
		if toSource.IsNavigable {
			plan[dst].relationships = append(plan[dst].relationships, fmt.Sprintf(
				"%s: Mapped[List[%q]] = relationship(secondary=%q%s)", toSource.Name, src.Name, table, backPop(toTarget)))
		}
		return fmt.Sprintf("%s = Table(\n    %q,\n    Base.metadata,\n    Column(%q, ForeignKey(%q), primary_key=True),\n    Column(%q, ForeignKey(%q), primary_key=True),\n)\n",
			table, table, srcCol, snakeCase(src.Name)+".id", dstCol, snakeCase(dst.Name)+".id")
	}

	// holder carries the foreign key to other through end.
	holder, other, end, opposite := src, dst, toTarget, toSource
	oneToOne := !toTarget.Multiplicity.IsMany() && !toSource.Multiplicity.IsMany()
	if toTarget.Multiplicity.IsMany() || (oneToOne && toTarget.IsComposite) {
		holder, other, end, opposite = dst, src, toSource, toTarget
	}
	col := snakeCase(end.Name) + "_id"
	fk := fmt.Sprintf("ForeignKey(%q", snakeCase(other.Name)+".id")
	if opposite.IsComposite {
		fk += `, ondelete="CASCADE"`
	}
	fk += ")"
	plan[holder].columns = append(plan[holder].columns, fmt.Sprintf(
		"%s: Mapped[%s] = mapped_column(%s)", col, optional("int", end.Multiplicity.IsRequired()), fk))

	foreign := fmt.Sprintf("%q", "["+holder.Name+"."+col+"]")
	if end.IsNavigable {
		plan[holder].relationships = append(plan[holder].relationships, fmt.Sprintf(
			"%s: Mapped[%s] = relationship(foreign_keys=%s%s)",
			end.Name, optional(fmt.Sprintf("%q", other.Name), end.Multiplicity.IsRequired()), foreign, backPop(opposite)))
	}
	if opposite.IsNavigable {
		ann := optional(fmt.Sprintf("%q", holder.Name), false)
		if opposite.Multiplicity.IsMany() {
			ann = fmt.Sprintf("List[%q]", holder.Name)
		}
		plan[other].relationships = append(plan[other].relationships, fmt.Sprintf(
			"%s: Mapped[%s] = relationship(foreign_keys=%s%s)", opposite.Name, ann, foreign, backPop(end)))
	}
	return ""
}
