package keeper

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"

	"pwmgr/internal/domain/entry"
	"pwmgr/internal/infrastructure/storage"
)

// removedMark отмечает удаленные записи в списке
const removedMark = "-"

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func documents(entries []*entry.Entry) []entry.Document {
	docs := make([]entry.Document, 0, len(entries))
	for _, e := range entries {
		docs = append(docs, e.Document())
	}
	return docs
}

// WriteList выводит строки "ID<TAB>сервис"; при сортировке по времени добавляется время изменения
func WriteList(w io.Writer, entries []*entry.Entry, sort ListSort, asJSON bool) error {
	if asJSON {
		return writeJSON(w, documents(entries))
	}

	for _, e := range entries {
		prefix := ""
		if e.IsRemoved() {
			prefix = removedMark
		}

		var err error
		if sort == SortByLastUpdate {
			_, err = fmt.Fprintf(w, "%s%s\t%s\t%s\n", prefix, e.ID(), e.Service(), formatStamp(e))
		} else {
			_, err = fmt.Fprintf(w, "%s%s\t%s\n", prefix, e.ID(), e.Service())
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// WriteEntries выводит найденные записи целиком; full добавляет псевдонимы и теги
func WriteEntries(w io.Writer, entries []*entry.Entry, full, asJSON bool) error {
	if asJSON {
		return writeJSON(w, documents(entries))
	}

	var b strings.Builder
	for i, e := range entries {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString("----\n")
		fmt.Fprintf(&b, "id: %s\n", e.ID())
		fmt.Fprintf(&b, "service: %s\n", e.Service())
		if full {
			fmt.Fprintf(&b, "aliases: %s\n", joinOrNone(e.Aliases()))
			fmt.Fprintf(&b, "tags: %s\n", joinOrNone(e.Tags()))
			fmt.Fprintf(&b, "last_update: %s\n", formatStamp(e))
		}

		props := e.Properties()
		b.WriteString("properties:\n")
		if len(props) == 0 {
			b.WriteString("  (none)\n")
		}
		keys := make([]string, 0, len(props))
		for k := range props {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		for _, k := range keys {
			fmt.Fprintf(&b, "  %s: %s\n", k, props[k])
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// WriteSearch выводит строки "ID<TAB>сервис"
func WriteSearch(w io.Writer, entries []*entry.Entry, asJSON bool) error {
	if asJSON {
		return writeJSON(w, documents(entries))
	}
	for _, e := range entries {
		if _, err := fmt.Fprintf(w, "%s\t%s\n", e.ID(), e.Service()); err != nil {
			return err
		}
	}
	return nil
}

func WriteTags(w io.Writer, tags []storage.TagCount, withCount, asJSON bool) error {
	if asJSON {
		return writeJSON(w, tags)
	}
	for _, t := range tags {
		var err error
		if withCount {
			_, err = fmt.Fprintf(w, "%s\t%d\n", t.Tag, t.Count)
		} else {
			_, err = fmt.Fprintln(w, t.Tag)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func joinOrNone(values []string) string {
	if len(values) == 0 {
		return "(none)"
	}
	return strings.Join(values, ", ")
}
