// Package pdf 把简历记录渲染成固定版式的单页PDF文档。
//
// 渲染器对缺失字段完全宽容：任何字段缺失都渲染为空白而不是报错。
// "简历是否完整到可以渲染"由调用方判断，这里来者不拒。
package pdf

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/go-pdf/fpdf"

	"cv-assistant-go/internal/types"
)

// 页面尺寸与版式常量（单位：pt）
const (
	pageWidth  = 600
	pageHeight = 800

	marginX        = 50
	headerSize     = 24
	sectionSize    = 16
	fieldSize      = 12
	bulletSize     = 11
	footerSize     = 10
	lineHeight     = 20
	sectionAdvance = 25
	bulletAdvance  = 15
	sectionSpacing = 30
	footerY        = 770
)

// Renderer 固定版式的简历PDF渲染器
type Renderer struct{}

// NewRenderer 创建渲染器
func NewRenderer() *Renderer {
	return &Renderer{}
}

// Render 把简历记录渲染为PDF字节流
func (r *Renderer) Render(record *types.CVRecord) ([]byte, error) {
	if record == nil {
		record = types.NewCVRecord()
	}

	doc := fpdf.NewCustom(&fpdf.InitType{
		UnitStr: "pt",
		Size:    fpdf.SizeType{Wd: pageWidth, Ht: pageHeight},
	})
	doc.SetAutoPageBreak(false, 0)
	doc.AddPage()

	// 核心字体只支持cp1252，西语重音字符需要转换
	tr := doc.UnicodeTranslatorFromDescriptor("")

	c := &canvas{doc: doc, tr: tr, y: marginX}

	// 页眉
	c.header("Curriculum Vitae")

	// 个人信息
	c.section("Información Personal")
	c.field(fmt.Sprintf("Nombre: %s", record.Personal.Name))
	c.field(fmt.Sprintf("Email: %s", record.Personal.Email))
	c.field(fmt.Sprintf("Teléfono: %s", record.Personal.Phone))
	c.field(fmt.Sprintf("Ubicación: %s", record.Personal.Location))
	c.gap()

	// 教育经历
	c.section("Educación")
	for _, edu := range record.Education {
		c.boldField(edu.Degree)
		c.field(edu.University)
		c.field(formatDateRange(edu.Start, edu.End))
	}
	c.gap()

	// 工作经历
	c.section("Experiencia Laboral")
	for _, exp := range record.Experience {
		c.boldField(exp.Position)
		c.field(fmt.Sprintf("%s | %s", exp.Company, formatDateRange(exp.Start, exp.End)))
		for _, resp := range exp.Responsibilities {
			c.bullet(resp)
		}
	}
	c.gap()

	// 技能
	c.section("Habilidades")
	if len(record.Skills.Technical) > 0 {
		c.field(fmt.Sprintf("Técnicas: %s", strings.Join(record.Skills.Technical, ", ")))
	}
	if len(record.Skills.Soft) > 0 {
		c.field(fmt.Sprintf("Blandas: %s", strings.Join(record.Skills.Soft, ", ")))
	}

	// 页脚
	c.footer("Generado con CV Builder - © 2024")

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("生成PDF失败: %w", err)
	}
	return buf.Bytes(), nil
}

// formatDateRange 格式化起止日期，end为空时只显示start
func formatDateRange(start, end string) string {
	if end == "" {
		return start
	}
	return start + " - " + end
}

// canvas 封装固定版式的绘制原语，维护当前的垂直位置
type canvas struct {
	doc *fpdf.Fpdf
	tr  func(string) string
	y   float64
}

func (c *canvas) header(text string) {
	c.doc.SetFont("Helvetica", "B", headerSize)
	c.doc.SetTextColor(51, 102, 153)
	c.doc.Text(marginX, c.y+headerSize, c.tr(text))
	c.y += lineHeight * 2
}

func (c *canvas) section(title string) {
	c.doc.SetFont("Helvetica", "B", sectionSize)
	c.doc.SetTextColor(51, 102, 153)
	c.doc.Text(marginX, c.y+sectionSize, c.tr(title))
	c.y += sectionAdvance
}

func (c *canvas) field(text string) {
	c.doc.SetFont("Helvetica", "", fieldSize)
	c.doc.SetTextColor(0, 0, 0)
	c.doc.Text(marginX, c.y+fieldSize, c.tr(text))
	c.y += lineHeight
}

func (c *canvas) boldField(text string) {
	c.doc.SetFont("Helvetica", "B", fieldSize)
	c.doc.SetTextColor(0, 0, 0)
	c.doc.Text(marginX, c.y+fieldSize, c.tr(text))
	c.y += lineHeight
}

func (c *canvas) bullet(text string) {
	c.doc.SetFont("Helvetica", "", bulletSize)
	c.doc.SetTextColor(0, 0, 0)
	c.doc.Text(marginX+10, c.y+bulletSize, c.tr("• "+text))
	c.y += bulletAdvance
}

func (c *canvas) gap() {
	c.y += sectionSpacing
}

func (c *canvas) footer(text string) {
	c.doc.SetFont("Helvetica", "", footerSize)
	c.doc.SetTextColor(128, 128, 128)
	c.doc.Text(marginX, footerY, c.tr(text))
}
