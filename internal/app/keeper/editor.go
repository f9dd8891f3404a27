package keeper

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"

	"pwmgr/internal/domain/entry"

	"gopkg.in/yaml.v3"
)

// EditorLauncher открывает файл во внешнем редакторе и ждет его завершения
type EditorLauncher interface {
	Edit(ctx context.Context, path string) error
}

type EditorFunc func(ctx context.Context, path string) error

func (f EditorFunc) Edit(ctx context.Context, path string) error {
	return f(ctx, path)
}

// DefaultEditor запускает команду редактора; команда может содержать аргументы ("code --wait")
func DefaultEditor(command string) EditorLauncher {
	return EditorFunc(func(ctx context.Context, path string) error {
		args := strings.Fields(command)
		if len(args) == 0 {
			return errors.New("редактор не задан")
		}

		cmd := exec.CommandContext(ctx, args[0], append(args[1:], path)...)
		cmd.Stdin = os.Stdin
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr

		if err := cmd.Run(); err != nil {
			return fmt.Errorf("ошибка запуска редактора %q: %w", command, err)
		}
		return nil
	})
}

var idLinePattern = regexp.MustCompile(`(?m)^id\s*:.*$`)

// rewriteIDLine возвращает в документ исходный ID; если строки id нет, она добавляется в начало
func rewriteIDLine(content string, id entry.ID) string {
	line := fmt.Sprintf("id: %q", id.String())
	if idLinePattern.MatchString(content) {
		replaced := false
		return idLinePattern.ReplaceAllStringFunc(content, func(s string) string {
			if replaced {
				return s
			}
			replaced = true
			return line
		})
	}
	return line + "\n" + content
}

// editCheck проверяет отредактированный документ. Ненулевой результат -
// текст вопроса о повторе и ошибка на случай отказа.
type editCheck func(doc *entry.Document) (string, error)

func requireService(doc *entry.Document) (string, error) {
	if strings.TrimSpace(doc.Service) == "" {
		return "Имя сервиса не заполнено.", ErrEmptyService
	}
	return "", nil
}

func requireProperties(doc *entry.Document) (string, error) {
	if len(doc.Properties) == 0 {
		return "Не задано ни одного свойства.", ErrEmptyProperties
	}
	return "", nil
}

// editLoop пишет content во временный файл и открывает редактор, пока
// результат не пройдет проверки или пользователь не откажется от повтора.
func (a *App) editLoop(ctx context.Context, prefix string, id entry.ID, content []byte, checks ...editCheck) (*entry.Document, error) {
	path := filepath.Join(a.tempDir, fmt.Sprintf("pwmgr-%s-%s.yml", prefix, id))
	if err := os.WriteFile(path, content, 0o600); err != nil {
		return nil, fmt.Errorf("ошибка записи временного файла: %w", err)
	}
	defer func() {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			a.log.Warn("не удалось удалить временный файл", "path", path, "error", err)
		}
	}()

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if err := a.editor.Edit(ctx, path); err != nil {
			return nil, err
		}

		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("ошибка чтения результата редактирования: %w", err)
		}

		var doc entry.Document
		if err := yaml.Unmarshal(raw, &doc); err != nil {
			retry, perr := a.prompt.AskRetry(fmt.Sprintf("Ошибка разбора YAML: %v.", err))
			if perr != nil {
				return nil, perr
			}
			if retry {
				continue
			}
			return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
		}

		if doc.ID != id.String() {
			retry, perr := a.prompt.AskRetry("ID записи изменен, менять его нельзя.")
			if perr != nil {
				return nil, perr
			}
			if !retry {
				return nil, ErrIDChanged
			}
			fixed := rewriteIDLine(string(raw), id)
			if err := os.WriteFile(path, []byte(fixed), 0o600); err != nil {
				return nil, fmt.Errorf("ошибка восстановления ID: %w", err)
			}
			continue
		}

		failed := false
		for _, check := range checks {
			message, cerr := check(&doc)
			if cerr == nil {
				continue
			}
			retry, perr := a.prompt.AskRetry(message)
			if perr != nil {
				return nil, perr
			}
			if !retry {
				return nil, cerr
			}
			failed = true
			break
		}
		if failed {
			continue
		}

		return &doc, nil
	}
}
