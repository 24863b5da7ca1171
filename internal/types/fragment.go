package types

import "encoding/json"

// RawFragment 是从LLM回复中提取出的结构化数据片段。
// 字段名和形状都不可信：同一字段可能使用英文或西班牙文两套词汇，
// 一对多关系可能被表示为单个对象而不是数组，日期区间可能被写成
// 一个 "start - end" 字符串。归一化工作由 reconciler 完成，
// 这里只负责宽容地解码。
type RawFragment struct {
	Personal *RawPersonal `json:"personal,omitempty"`

	// education/experience 可能是对象也可能是数组，先保留原始JSON
	Education   json.RawMessage `json:"education,omitempty"`
	Experience  json.RawMessage `json:"experience,omitempty"`
	Experiencia json.RawMessage `json:"experiencia,omitempty"`

	Skills      *RawSkills `json:"skills,omitempty"`
	Habilidades *RawSkills `json:"habilidades,omitempty"`
}

// IsEmpty 判断片段是否不携带任何数据
func (f *RawFragment) IsEmpty() bool {
	if f == nil {
		return true
	}
	return f.Personal == nil &&
		len(f.Education) == 0 &&
		len(f.Experience) == 0 &&
		len(f.Experiencia) == 0 &&
		f.Skills == nil &&
		f.Habilidades == nil
}

// RawPersonal 个人信息片段，兼容两套字段名
type RawPersonal struct {
	Name     string `json:"name,omitempty"`
	Nombre   string `json:"nombre,omitempty"`
	Email    string `json:"email,omitempty"`
	Correo   string `json:"correo,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Telefono string `json:"telefono,omitempty"`
	Location string `json:"location,omitempty"`
	Ubicacion string `json:"ubicacion,omitempty"`
}

// RawEducation 教育经历片段。日期可能是独立的 start/end，
// 也可能是合并的 dates/fechas 字符串。
type RawEducation struct {
	Degree      string `json:"degree,omitempty"`
	Titulo      string `json:"titulo,omitempty"`
	University  string `json:"university,omitempty"`
	Universidad string `json:"universidad,omitempty"`
	Start       string `json:"start,omitempty"`
	End         string `json:"end,omitempty"`
	Dates       string `json:"dates,omitempty"`
	Fechas      string `json:"fechas,omitempty"`
}

// RawExperience 工作经历片段。responsibilities 可能是字符串或数组，
// responsabilidades 是分号分隔的字符串。
type RawExperience struct {
	Position          string          `json:"position,omitempty"`
	Puesto            string          `json:"puesto,omitempty"`
	Company           string          `json:"company,omitempty"`
	Empresa           string          `json:"empresa,omitempty"`
	Start             string          `json:"start,omitempty"`
	End               string          `json:"end,omitempty"`
	Dates             string          `json:"dates,omitempty"`
	Fechas            string          `json:"fechas,omitempty"`
	Responsibilities  json.RawMessage `json:"responsibilities,omitempty"`
	Responsabilidades string          `json:"responsabilidades,omitempty"`
}

// RawSkills 技能片段，兼容两套字段名
type RawSkills struct {
	Technical []string `json:"technical,omitempty"`
	Tecnicas  []string `json:"tecnicas,omitempty"`
	Soft      []string `json:"soft,omitempty"`
	Blandas   []string `json:"blandas,omitempty"`
}
