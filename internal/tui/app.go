// Package tui provides an interactive terminal UI that converts pinyin as
// you type.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/f3rmion/prettypinyin/internal/clipboard"
	"github.com/f3rmion/prettypinyin/internal/pinyin"
	"github.com/f3rmion/prettypinyin/internal/tui/bigchar"
	"github.com/mattn/go-runewidth"
)

// Mode selects what the input is converted with.
type Mode int

const (
	ModePrettify  Mode = iota // ni3 hao3 -> nǐ hǎo
	ModeNumberize             // nǐ hǎo -> ni3 hao3
	ModeHanzi                 // 你好 -> nǐ hǎo
)

var modeNames = []string{"Tone marks", "Tone numbers", "Hanzi"}

var modeHints = []string{
	"ni3 hao3 → nǐ hǎo",
	"nǐ hǎo → ni3 hao3",
	"你好 → nǐ hǎo",
}

func (m Mode) String() string {
	if int(m) < len(modeNames) {
		return modeNames[m]
	}
	return "unknown"
}

// copiedMsg reports the result of a clipboard write.
type copiedMsg struct {
	err error
}

// AppModel is the bubbletea model of the converter.
type AppModel struct {
	input  textinput.Model
	parser *pinyin.Parser
	mode   Mode
	opts   pinyin.Options

	width  int
	height int

	output string
	status string
	err    error
}

// NewApp creates the converter UI.
func NewApp(opts pinyin.Options) AppModel {
	ti := textinput.New()
	ti.Placeholder = "ni3 hao3"
	ti.Prompt = "› "
	ti.CharLimit = 512
	ti.Focus()

	return AppModel{
		input:  ti,
		parser: pinyin.NewParser(),
		opts:   opts,
		width:  80,
	}
}

// Init initializes the model
func (m AppModel) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages
func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.Width = max(msg.Width-10, 10)
		return m, nil

	case copiedMsg:
		m.err = msg.err
		if msg.err == nil {
			m.status = "Copied to clipboard"
		} else {
			m.status = ""
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		case "tab":
			m.mode = (m.mode + 1) % Mode(len(modeNames))
			m.output = m.convert(m.input.Value())
			m.status = ""
			return m, nil
		case "ctrl+y":
			if m.output == "" {
				return m, nil
			}
			return m, copyCmd(m.output)
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.output = m.convert(m.input.Value())
	m.status = ""
	return m, cmd
}

func copyCmd(text string) tea.Cmd {
	return func() tea.Msg {
		return copiedMsg{err: clipboard.Write(text)}
	}
}

// convert applies the current mode to text.
func (m AppModel) convert(text string) string {
	switch m.mode {
	case ModeNumberize:
		return pinyin.NumberizeWith(text, m.opts)
	case ModeHanzi:
		return m.parser.Pinyin(text)
	default:
		return pinyin.Prettify(text)
	}
}

// Output returns the current conversion result.
func (m AppModel) Output() string {
	return m.output
}

// View renders the UI
func (m AppModel) View() string {
	var b strings.Builder

	b.WriteString(TitleStyle.Render("拼音 prettypinyin"))
	b.WriteString("\n\n")
	b.WriteString(m.renderModes())
	b.WriteString("\n")
	b.WriteString(SubtitleStyle.Render(modeHints[m.mode]))
	b.WriteString("\n\n")
	b.WriteString(SearchBoxStyle.Render(m.input.View()))
	b.WriteString("\n")

	if m.output != "" {
		b.WriteString(ResultStyle.Render(m.output))
		b.WriteString("\n")

		if big := m.renderBig(); big != "" {
			b.WriteString(BigTextStyle.Render(big))
			b.WriteString("\n\n")
		}

		b.WriteString(m.renderBreakdown())
		b.WriteString("\n")
	}

	switch {
	case m.err != nil:
		b.WriteString(ErrorStyle.Render("Error: " + m.err.Error()))
		b.WriteString("\n")
	case m.status != "":
		b.WriteString(CopiedStyle.Render(m.status))
		b.WriteString("\n")
	}

	b.WriteString(HelpStyle.Render("tab: switch mode • ctrl+y: copy • esc: quit"))

	return ContentStyle.Render(b.String())
}

func (m AppModel) renderModes() string {
	tabs := make([]string, len(modeNames))
	for i, name := range modeNames {
		if Mode(i) == m.mode {
			tabs[i] = ModeTabActiveStyle.Render(name)
		} else {
			tabs[i] = ModeTabStyle.Render(name)
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m AppModel) renderBig() string {
	cols := min(m.width-6, 120)
	if cols < 20 || m.height > 0 && m.height < 24 {
		return ""
	}
	return bigchar.Cached(m.output, cols, 6)
}

// renderBreakdown lists every syllable of the marked result with its parts.
func (m AppModel) renderBreakdown() string {
	marked := m.output
	if m.mode == ModeNumberize {
		marked = pinyin.Prettify(m.output)
	}

	var rows [][3]string
	for _, s := range strings.Fields(marked) {
		syl := pinyin.ParseSyllable(s)
		rows = append(rows, [3]string{s, syl.Initial + "·" + syl.Final, syl.Tone.Name()})
	}
	if len(rows) == 0 {
		return ""
	}

	width := len("syllable")
	for _, r := range rows {
		width = max(width, runewidth.StringWidth(r[0]), runewidth.StringWidth(r[1]))
	}

	var b strings.Builder
	b.WriteString(LabelStyle.Render(fmt.Sprintf("%-*s  %-*s  %s", width, "syllable", width, "parts", "tone")))
	b.WriteString("\n")
	for _, r := range rows {
		b.WriteString(ValueStyle.Render(runewidth.FillRight(r[0], width)))
		b.WriteString("  ")
		b.WriteString(ValueStyle.Render(runewidth.FillRight(r[1], width)))
		b.WriteString("  ")
		b.WriteString(ToneStyle.Render(r[2]))
		b.WriteString("\n")
	}
	return b.String()
}
