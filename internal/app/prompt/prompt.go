package prompt

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"golang.org/x/term"
)

// Prompter задает пользователю вопросы да/нет
type Prompter interface {
	// AskRetry спрашивает, повторить ли редактирование (по умолчанию - нет)
	AskRetry(message string) (bool, error)
	Confirm(message string, def bool, label string) (bool, error)
}

// Std читает ответы из терминала. Если ввод не интерактивный,
// возвращается ответ по умолчанию.
type Std struct {
	in          *bufio.Reader
	out         io.Writer
	interactive bool
}

func NewStd() *Std {
	return &Std{
		in:          bufio.NewReader(os.Stdin),
		out:         os.Stderr,
		interactive: term.IsTerminal(int(os.Stdin.Fd())),
	}
}

// NewStdFrom нужен для тестов и для нестандартных потоков ввода
func NewStdFrom(in io.Reader, out io.Writer) *Std {
	return &Std{
		in:          bufio.NewReader(in),
		out:         out,
		interactive: true,
	}
}

func (p *Std) AskRetry(message string) (bool, error) {
	return p.Confirm(message+" Отредактировать снова?", false, "повтор")
}

func (p *Std) Confirm(message string, def bool, label string) (bool, error) {
	hint := "[y/N]"
	if def {
		hint = "[Y/n]"
	}

	prefix := ""
	if label != "" {
		prefix = color.YellowString("[%s] ", label)
	}
	fmt.Fprintf(p.out, "%s%s %s: ", prefix, message, hint)

	if !p.interactive {
		fmt.Fprintln(p.out)
		return def, nil
	}

	line, err := p.in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		if err == io.EOF {
			return def, nil
		}
		return false, fmt.Errorf("ошибка чтения ответа: %w", err)
	}

	switch strings.ToLower(strings.TrimSpace(line)) {
	case "":
		return def, nil
	case "y", "yes", "д", "да":
		return true, nil
	default:
		return false, nil
	}
}

// Queue возвращает заранее заданные ответы по очереди; когда они
// закончились - ответ по умолчанию
type Queue struct {
	answers []bool
	asked   []string
}

func NewQueue(answers ...bool) *Queue {
	return &Queue{answers: answers}
}

func (q *Queue) AskRetry(message string) (bool, error) {
	return q.Confirm(message, false, "")
}

func (q *Queue) Confirm(message string, def bool, _ string) (bool, error) {
	q.asked = append(q.asked, message)
	if len(q.answers) == 0 {
		return def, nil
	}
	answer := q.answers[0]
	q.answers = q.answers[1:]
	return answer, nil
}

// Asked возвращает заданные вопросы
func (q *Queue) Asked() []string {
	return q.asked
}
