package pdf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cv-assistant-go/internal/types"
)

func fullRecord() *types.CVRecord {
	record := types.NewCVRecord()
	record.Personal = types.PersonalInfo{
		Name:     "María José Fernández",
		Email:    "maria@example.com",
		Phone:    "555-0303",
		Location: "Sevilla, España",
	}
	record.Education = []types.EducationEntry{
		{Degree: "Ingeniería Informática", University: "Universidad de Sevilla", Start: "2014", End: "2018"},
		{Degree: "Máster en Computación", University: "UPM", Start: "2018", End: "2020"},
	}
	record.Experience = []types.ExperienceEntry{
		{
			Position: "Desarrolladora Backend", Company: "Acme", Start: "2020", End: "2023",
			Responsibilities: []string{"diseñar APIs", "optimizar consultas SQL"},
		},
		{Position: "Ingeniera de Datos", Company: "Globex", Start: "2023"},
	}
	record.Skills = types.SkillSet{
		Technical: []string{"Go", "PostgreSQL", "Docker"},
		Soft:      []string{"comunicación", "trabajo en equipo"},
	}
	return record
}

func TestRenderFullRecord(t *testing.T) {
	renderer := NewRenderer()

	pdfBytes, err := renderer.Render(fullRecord())

	require.NoError(t, err)
	require.NotEmpty(t, pdfBytes)
	assert.Equal(t, "%PDF", string(pdfBytes[:4]), "输出必须以PDF魔数开头")
}

func TestRenderEmptyRecord(t *testing.T) {
	renderer := NewRenderer()

	// 空记录也要能渲染出合法文档，不panic不报错
	pdfBytes, err := renderer.Render(types.NewCVRecord())

	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(pdfBytes[:4]))
}

func TestRenderAllEntriesIncluded(t *testing.T) {
	renderer := NewRenderer()

	one := types.NewCVRecord()
	one.Personal.Name = "Ana"
	one.Education = []types.EducationEntry{{Degree: "Grado", University: "U1"}}

	many := types.NewCVRecord()
	many.Personal.Name = "Ana"
	many.Education = []types.EducationEntry{
		{Degree: "Grado", University: "U1"},
		{Degree: "Máster", University: "U2"},
		{Degree: "Doctorado", University: "U3"},
	}

	onePDF, err := renderer.Render(one)
	require.NoError(t, err)
	manyPDF, err := renderer.Render(many)
	require.NoError(t, err)

	// 无法直接断言PDF文本内容，但多出的两条经历必然产出更大的文档
	assert.Greater(t, len(manyPDF), len(onePDF), "每条教育经历都应被渲染")
}

func TestFormatDateRange(t *testing.T) {
	assert.Equal(t, "2019 - 2021", formatDateRange("2019", "2021"))
	assert.Equal(t, "2019", formatDateRange("2019", ""))
	assert.Equal(t, "", formatDateRange("", ""))
}
