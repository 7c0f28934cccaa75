package metadata

import (
	"fmt"
	"strings"

	"github.com/go-openapi/inflect"
)

// FieldType 描述字段在持久化文档中的存储类型，决定生成的 hydrator 如何做类型转换。
type FieldType string

const (
	FieldTypeString     FieldType = "string"
	FieldTypeInt        FieldType = "int"
	FieldTypeFloat      FieldType = "float"
	FieldTypeBool       FieldType = "bool"
	FieldTypeTime       FieldType = "time"
	FieldTypeID         FieldType = "id"
	FieldTypeHash       FieldType = "hash"
	FieldTypeCollection FieldType = "collection"
)

var knownFieldTypes = map[FieldType]struct{}{
	FieldTypeString:     {},
	FieldTypeInt:        {},
	FieldTypeFloat:      {},
	FieldTypeBool:       {},
	FieldTypeTime:       {},
	FieldTypeID:         {},
	FieldTypeHash:       {},
	FieldTypeCollection: {},
}

// Known 判断类型是否受支持。
func (t FieldType) Known() bool {
	_, ok := knownFieldTypes[t]
	return ok
}

// Field 是单个字段的映射：Name 为内存对象字段名，Key 为文档中的键。
type Field struct {
	Name     string    `yaml:"name"`
	Key      string    `yaml:"key"`
	Type     FieldType `yaml:"type"`
	Nullable bool      `yaml:"nullable"`
}

// PersistedKey 返回文档中的键名，未声明 Key 时退回字段名。
func (f Field) PersistedKey() string {
	if f.Key != "" {
		return f.Key
	}
	return f.Name
}

// GoName 返回生成代码中的结构体字段名，first_name 与 firstName 得到同一个名字。
func (f Field) GoName() string {
	return inflect.Camelize(f.Name)
}

// Class 描述一个文档类的全部映射信息。
type Class struct {
	Name       string  `yaml:"name"`
	Collection string  `yaml:"collection"`
	Identifier string  `yaml:"identifier"`
	Fields     []Field `yaml:"fields"`

	// Source 记录映射来源文件，仅用于错误提示。
	Source string `yaml:"-"`
}

// GoName 返回生成代码中的类型名，order_item 与 OrderItem 得到同一个名字。
func (c *Class) GoName() string {
	return inflect.Camelize(c.Name)
}

// IdentifierField 返回标识字段，未声明时使用类型为 id 的第一个字段。
func (c *Class) IdentifierField() (Field, bool) {
	for _, f := range c.Fields {
		if c.Identifier != "" && f.Name == c.Identifier {
			return f, true
		}
	}
	if c.Identifier != "" {
		return Field{}, false
	}
	for _, f := range c.Fields {
		if f.Type == FieldTypeID {
			return f, true
		}
	}
	return Field{}, false
}

// Validate 检查类映射的完整性，返回的错误携带来源文件与字段路径。
func (c *Class) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return &MappingError{Source: c.Source, Field: "name", Reason: "不能为空"}
	}
	if len(c.Fields) == 0 {
		return &MappingError{Source: c.Source, Class: c.Name, Field: "fields", Reason: "至少需要一个字段"}
	}

	names := make(map[string]struct{}, len(c.Fields))
	keys := make(map[string]struct{}, len(c.Fields))
	for i, f := range c.Fields {
		path := fmt.Sprintf("fields[%d]", i)
		if strings.TrimSpace(f.Name) == "" {
			return &MappingError{Source: c.Source, Class: c.Name, Field: path + ".name", Reason: "不能为空"}
		}
		if !f.Type.Known() {
			return &MappingError{Source: c.Source, Class: c.Name, Field: path + ".type", Reason: fmt.Sprintf("不支持的类型 %q", f.Type)}
		}
		goName := f.GoName()
		if _, dup := names[goName]; dup {
			return &MappingError{Source: c.Source, Class: c.Name, Field: path + ".name", Reason: "重复字段 " + goName}
		}
		names[goName] = struct{}{}
		key := f.PersistedKey()
		if _, dup := keys[key]; dup {
			return &MappingError{Source: c.Source, Class: c.Name, Field: path + ".key", Reason: "重复键 " + key}
		}
		keys[key] = struct{}{}
	}

	if c.Identifier != "" {
		if _, ok := c.IdentifierField(); !ok {
			return &MappingError{Source: c.Source, Class: c.Name, Field: "identifier", Reason: "未找到字段 " + c.Identifier}
		}
	}
	return nil
}

// MappingError 指出映射文件中的具体问题。
type MappingError struct {
	Source string
	Class  string
	Field  string
	Reason string
}

func (e *MappingError) Error() string {
	var b strings.Builder
	if e.Source != "" {
		b.WriteString(e.Source)
		b.WriteString(": ")
	}
	if e.Class != "" {
		b.WriteString(e.Class)
		b.WriteString(".")
	}
	b.WriteString(e.Field)
	b.WriteString(": ")
	b.WriteString(e.Reason)
	return b.String()
}
