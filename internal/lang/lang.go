package lang

import (
	"fmt"
	"os"
	"sort"

	"github.com/pelletier/go-toml/v2"
)

// Language describes how one programming language is compiled and run.
// CompileCmd is nil for interpreted languages.
type Language struct {
	ID               string
	Name             string
	CodeFilename     string
	CompileCmd       *string
	CompiledFilename *string
	ExecCmd          string
}

// Registry holds the languages the judge accepts submissions in.
type Registry struct {
	byID map[string]Language
}

func strPtr(s string) *string { return &s }

// DefaultRegistry returns the built-in language set.
func DefaultRegistry() *Registry {
	langs := []Language{
		{
			ID:               "cpp17",
			Name:             "C++17",
			CodeFilename:     "main.cpp",
			CompileCmd:       strPtr("g++ -std=c++17 -O2 -o main main.cpp"),
			CompiledFilename: strPtr("main"),
			ExecCmd:          "./main",
		},
		{
			ID:               "java21",
			Name:             "Java 21",
			CodeFilename:     "Main.java",
			CompileCmd:       strPtr("javac Main.java"),
			CompiledFilename: strPtr("Main.class"),
			ExecCmd:          "java Main",
		},
		{
			ID:           "python3",
			Name:         "Python 3",
			CodeFilename: "main.py",
			ExecCmd:      "python3 main.py",
		},
	}

	r := &Registry{byID: make(map[string]Language)}
	for _, l := range langs {
		r.byID[l.ID] = l
	}
	return r
}

func (r *Registry) Get(id string) (Language, bool) {
	l, ok := r.byID[id]
	return l, ok
}

// IDs returns the registered language ids in stable order.
func (r *Registry) IDs() []string {
	ids := make([]string, 0, len(r.byID))
	for id := range r.byID {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

type tomlLanguage struct {
	ID            string `toml:"id"`
	LangName      string `toml:"lang_name"`
	CodeFname     string `toml:"code_fname"`
	CompileCmd    string `toml:"compile_cmd"`
	CompiledFname string `toml:"compiled_fname"`
	ExecCmd       string `toml:"exec_cmd"`
}

type tomlRoot struct {
	Languages []tomlLanguage `toml:"languages"`
}

// LoadTOML overlays languages from a TOML registry file onto r. Entries
// with a known id replace the built-in definition; new ids are added.
func (r *Registry) LoadTOML(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read language registry: %w", err)
	}

	var root tomlRoot
	if err := toml.Unmarshal(data, &root); err != nil {
		return fmt.Errorf("failed to parse language registry TOML: %w", err)
	}

	for _, l := range root.Languages {
		if l.ID == "" || l.LangName == "" || l.CodeFname == "" || l.ExecCmd == "" {
			return fmt.Errorf("language entry incomplete; require id, lang_name, code_fname, exec_cmd (id=%q)", l.ID)
		}
		lang := Language{
			ID:           l.ID,
			Name:         l.LangName,
			CodeFilename: l.CodeFname,
			ExecCmd:      l.ExecCmd,
		}
		if l.CompileCmd != "" {
			lang.CompileCmd = strPtr(l.CompileCmd)
		}
		if l.CompiledFname != "" {
			lang.CompiledFilename = strPtr(l.CompiledFname)
		}
		r.byID[lang.ID] = lang
	}
	return nil
}
