package latex

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"cvforge/pkg/models"
)

// Engine renders optimized resume documents into LaTeX using named themes
type Engine struct {
}

func NewEngine() *Engine { return &Engine{} }

// Render takes an optimized resume and theme name, and returns LaTeX content
func (e *Engine) Render(resume *models.OptimizedResume, theme string) (string, error) {
	tstr, err := getThemeTemplate(theme)
	if err != nil {
		return "", err
	}

	vm := buildViewModel(resume)

	funcMap := template.FuncMap{
		"escape":  escapeLaTeX,
		"join":    strings.Join,
		"escJoin": escJoin,
	}
	tmpl, err := template.New("resume").Funcs(funcMap).Parse(tstr)
	if err != nil {
		return "", fmt.Errorf("parse template: %w", err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, vm); err != nil {
		return "", fmt.Errorf("render template: %w", err)
	}
	return buf.String(), nil
}

// ===== Theme selection =====

const DefaultTheme = "DEFAULT_THEME"

func getThemeTemplate(theme string) (string, error) {
	switch strings.ToUpper(strings.TrimSpace(theme)) {
	case "", DefaultTheme:
		return defaultThemeTemplate, nil
	default:
		return "", fmt.Errorf("unknown theme: %s", theme)
	}
}

// ===== View model and helpers =====

type ExperienceVM struct {
	Period  string
	Title   string
	Company string
	Tasks   []string
}

type EducationVM struct {
	Period      string
	Institution string
	Degree      string
}

type ViewModel struct {
	Name    string
	Title   string
	Email   string
	Profile string

	Experiences []ExperienceVM
	Education   []EducationVM
	HardSkills  []string
	SoftSkills  []string
}

func buildViewModel(resume *models.OptimizedResume) ViewModel {
	info := resume.UserInformation

	vm := ViewModel{
		Name:       info.Name,
		Title:      info.MainJobTitle,
		Email:      info.Email,
		Profile:    info.ProfileDescription,
		HardSkills: uniqueNonEmpty(info.Skills.HardSkills),
		SoftSkills: uniqueNonEmpty(info.Skills.SoftSkills),
	}

	for _, exp := range info.Experiences {
		vm.Experiences = append(vm.Experiences, ExperienceVM{
			Period:  formatPeriod(exp.StartDate, exp.EndDate),
			Title:   exp.JobTitle,
			Company: exp.Company,
			Tasks:   exp.FourTasks,
		})
	}

	for _, edu := range info.Education {
		vm.Education = append(vm.Education, EducationVM{
			Period:      formatPeriod(edu.StartDate, edu.EndDate),
			Institution: edu.Institution,
			Degree:      edu.Degree,
		})
	}

	return vm
}

func formatPeriod(start, end string) string {
	start = strings.TrimSpace(start)
	end = strings.TrimSpace(end)
	if start == "" && end == "" {
		return ""
	}
	if end == "" {
		return start + " – Present"
	}
	if start == "" {
		return end
	}
	return fmt.Sprintf("%s – %s", start, end)
}

func uniqueNonEmpty(in []string) []string {
	seen := map[string]bool{}
	var out []string
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" || seen[strings.ToLower(s)] {
			continue
		}
		seen[strings.ToLower(s)] = true
		out = append(out, s)
	}
	return out
}

// Latex escaping (minimal)
var latexReplacer = strings.NewReplacer(
	"\\", "\\\\",
	"{", "\\{",
	"}", "\\}",
	"$", "\\$",
	"&", "\\&",
	"#", "\\#",
	"_", "\\_",
	"%", "\\%",
	"~", "\\textasciitilde{}",
	"^", "\\textasciicircum{}",
)

func escapeLaTeX(s string) string { return latexReplacer.Replace(s) }

// escJoin escapes each element then joins with sep, to avoid LaTeX injection via special chars
func escJoin(slice []string, sep string) string {
	if len(slice) == 0 {
		return ""
	}
	out := make([]string, len(slice))
	for i, s := range slice {
		out[i] = escapeLaTeX(s)
	}
	return strings.Join(out, sep)
}

// ===== DEFAULT THEME TEMPLATE =====

const defaultThemeTemplate = `\documentclass[10pt, letterpaper]{article}

% Packages:
\usepackage[
    ignoreheadfoot,
    top=2 cm,
    bottom=2 cm,
    left=2 cm,
    right=2 cm,
    footskip=1.0 cm,
]{geometry}
\usepackage{titlesec}
\usepackage{tabularx}
\usepackage{array}
\usepackage[dvipsnames]{xcolor}
\definecolor{primaryColor}{RGB}{0, 0, 0}
\usepackage{enumitem}
\usepackage{fontawesome5}
\usepackage{amsmath}
\usepackage[
    pdftitle={{ printf "{%s's CV}" (escape .Name) }},
    pdfauthor={{ printf "{%s}" (escape .Name) }},
    pdfcreator={CVForge},
    colorlinks=true,
    urlcolor=primaryColor
]{hyperref}
\usepackage[pscoord]{eso-pic}
\usepackage{calc}
\usepackage{bookmark}
\usepackage{lastpage}
\usepackage{changepage}
\usepackage{paracol}
\usepackage{ifthen}
\usepackage{needspace}
\usepackage{iftex}

\ifPDFTeX
    \pdfgentounicode=1
    \usepackage[T1]{fontenc}
    \usepackage[utf8]{inputenc}
    \usepackage{lmodern}
\fi

\usepackage{charter}

% Settings
\raggedright
\AtBeginEnvironment{adjustwidth}{\partopsep0pt}
\pagestyle{empty}
\setcounter{secnumdepth}{0}
\setlength{\parindent}{0pt}
\setlength{\topskip}{0pt}
\setlength{\columnsep}{0.15cm}
\pagenumbering{gobble}

\titleformat{\section}{\needspace{4\baselineskip}\bfseries\large}{}{0pt}{}[\vspace{1pt}\titlerule]
\titlespacing{\section}{-1pt}{0.3 cm}{0.2 cm}

\renewcommand\labelitemi{$\vcenter{\hbox{\small$\bullet$}}$}
\newenvironment{highlights}{\begin{itemize}[topsep=0.10 cm,parsep=0.10 cm,partopsep=0pt,itemsep=0pt,leftmargin=0 cm + 10pt]}{\end{itemize}}
\newenvironment{onecolentry}{\begin{adjustwidth}{0 cm + 0.00001 cm}{0 cm + 0.00001 cm}}{\end{adjustwidth}}
\newenvironment{twocolentry}[2][]{\onecolentry\def\secondColumn{#2}\setcolumnwidth{\fill, 4.5 cm}\begin{paracol}{2}}{\switchcolumn \raggedleft \secondColumn\end{paracol}\endonecolentry}
\newenvironment{header}{\setlength{\topsep}{0pt}\par\kern\topsep\centering\linespread{1.5}}{\par\kern\topsep}

\begin{document}
    \newcommand{\AND}{\unskip\cleaders\copy\ANDbox\hskip\wd\ANDbox\ignorespaces}
    \newsavebox\ANDbox\sbox\ANDbox{$|$}

    \begin{header}
        \fontsize{25 pt}{25 pt}\selectfont {{ escape .Name }}

        \vspace{5 pt}

        \normalsize
        {{- if .Title }}\mbox{ {{- escape .Title -}} }{{ end }}
        {{- if .Email }}\kern 5.0 pt\mbox{\faEnvelope}\ {\href{mailto:{{ .Email }}}{ {{ escape .Email }} }}{{ end }}
    \end{header}

    \vspace{5 pt - 0.3 cm}

    {{- if .Profile }}
    \section{Profile}
        \begin{onecolentry}
            {{ escape .Profile }}
        \end{onecolentry}
    {{- end }}

    {{- if .Experiences }}
    \section{Experience}
    {{- range .Experiences }}
        \begin{twocolentry}{
            {{ escape .Period }}
        }
            \textbf{ {{- escape .Title -}} }, {{- escape .Company -}}\end{twocolentry}
        \vspace{0.10 cm}
        {{- if .Tasks }}\begin{onecolentry}\begin{highlights}{{ range .Tasks }}\item {{ escape . }}{{ end }}\end{highlights}\end{onecolentry}{{ end }}
        \vspace{0.2 cm}
    {{- end }}
    {{- end }}

    {{- if .Education }}
    \section{Education}
    {{- range .Education }}
        \begin{twocolentry}{
            {{ escape .Period }}
        }
            \textbf{ {{- escape .Institution -}} }, {{- escape .Degree -}}\end{twocolentry}
        \vspace{0.10 cm}
    {{- end }}
    {{- end }}

    {{- if or .HardSkills .SoftSkills }}
    \section{Skills}
        {{- if .HardSkills }}\begin{onecolentry}\textbf{Technical:} {{ escJoin .HardSkills ", " }}\end{onecolentry}{{ end }}
        {{- if .SoftSkills }}\vspace{0.2 cm}\begin{onecolentry}\textbf{Professional:} {{ escJoin .SoftSkills ", " }}\end{onecolentry}{{ end }}
    {{- end }}

\end{document}
`
