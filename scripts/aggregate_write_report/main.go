// aggregate_write_report lists service methods that write through a geo repo instead of an
// aggregate. It exits 1 when any are found, so population writes stay inside the aggregates.
//
//	go run ./scripts/aggregate_write_report [repo-root]
package main

import (
	"encoding/json"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

type methodStats struct {
	StructName               string   `json:"struct_name"`
	Method                   string   `json:"method"`
	File                     string   `json:"file"`
	Line                     int      `json:"line"`
	RepoWriteCalls           int      `json:"repo_write_calls"`
	RepoFieldsWritten        []string `json:"repo_fields_written"`
	AggregateWriteCalls      int      `json:"aggregate_write_calls"`
	AggregateMethodsObserved []string `json:"aggregate_methods_observed"`
}

type report struct {
	RepoWriteCallsites      int           `json:"service_layer_repo_write_callsites"`
	AggregateWriteCallsites int           `json:"aggregate_write_callsites"`
	Residual                []methodStats `json:"residual_methods"`
	Methods                 []methodStats `json:"methods"`
}

type structFields struct {
	RepoFields      map[string]string
	AggregateFields map[string]string
}

var repoWriteMethods = map[string]bool{
	"Create":              true,
	"InsertIfAbsent":      true,
	"UpdateFields":        true,
	"SetContinent":        true,
	"RecomputePopulation": true,
	"Delete":              true,
	"LockByID":            true,
	"LockByIDs":           true,
}

var aggregateWriteMethods = map[string]bool{
	"CreateContinent":  true,
	"UpdateContinent":  true,
	"DeleteContinent":  true,
	"CreateCountry":    true,
	"UpdateCountry":    true,
	"DeleteCountry":    true,
	"LinkToContinent":  true,
	"CreateCity":       true,
	"UpdateCity":       true,
	"DeleteCity":       true,
	"RecomputeCountry": true,
	"RecomputeAll":     true,
	"Resolve":          true,
}

func main() {
	root := "."
	if len(os.Args) > 1 {
		root = os.Args[1]
	}

	servicesDir := filepath.Join(root, "internal", "services")
	fset := token.NewFileSet()
	pkgs, err := parser.ParseDir(fset, servicesDir, func(fi os.FileInfo) bool {
		name := fi.Name()
		return strings.HasSuffix(name, ".go") && !strings.HasSuffix(name, "_test.go")
	}, 0)
	if err != nil {
		exitf("parse dir: %v", err)
	}
	pkg, ok := pkgs["services"]
	if !ok {
		exitf("services package not found in %s", servicesDir)
	}

	fieldsByStruct := map[string]structFields{}
	for _, f := range pkg.Files {
		collectStructFields(f, fieldsByStruct)
	}
	var methods []methodStats
	for filePath, f := range pkg.Files {
		rel, err := filepath.Rel(root, filePath)
		if err != nil {
			rel = filePath
		}
		collectMethodStats(fset, f, rel, fieldsByStruct, &methods)
	}

	rep := buildReport(methods)
	out, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		exitf("marshal report: %v", err)
	}
	fmt.Println(string(out))
	if rep.RepoWriteCallsites > 0 {
		os.Exit(1)
	}
}

// collectStructFields records struct fields typed repos.*Repo or domainagg.*Aggregate/Resolver.
func collectStructFields(file *ast.File, out map[string]structFields) {
	for _, decl := range file.Decls {
		gd, ok := decl.(*ast.GenDecl)
		if !ok || gd.Tok != token.TYPE {
			continue
		}
		for _, spec := range gd.Specs {
			ts, ok := spec.(*ast.TypeSpec)
			if !ok {
				continue
			}
			st, ok := ts.Type.(*ast.StructType)
			if !ok || st.Fields == nil {
				continue
			}
			sf := structFields{RepoFields: map[string]string{}, AggregateFields: map[string]string{}}
			for _, field := range st.Fields.List {
				if len(field.Names) == 0 {
					continue
				}
				sel, ok := field.Type.(*ast.SelectorExpr)
				if !ok {
					continue
				}
				pkgIdent, ok := sel.X.(*ast.Ident)
				if !ok {
					continue
				}
				typeName := sel.Sel.Name
				for _, name := range field.Names {
					switch {
					case pkgIdent.Name == "repos" && strings.HasSuffix(typeName, "Repo"):
						sf.RepoFields[name.Name] = typeName
					case pkgIdent.Name == "domainagg" && (strings.HasSuffix(typeName, "Aggregate") || strings.HasSuffix(typeName, "Resolver")):
						sf.AggregateFields[name.Name] = typeName
					}
				}
			}
			if len(sf.RepoFields) > 0 || len(sf.AggregateFields) > 0 {
				out[ts.Name.Name] = sf
			}
		}
	}
}

func collectMethodStats(fset *token.FileSet, file *ast.File, relFile string, fieldsByStruct map[string]structFields, out *[]methodStats) {
	for _, decl := range file.Decls {
		fd, ok := decl.(*ast.FuncDecl)
		if !ok || fd.Recv == nil || fd.Body == nil || len(fd.Recv.List) == 0 {
			continue
		}
		recvName, recvType := recvInfo(fd.Recv.List[0])
		sf, ok := fieldsByStruct[recvType]
		if recvName == "" || !ok {
			continue
		}

		m := methodStats{
			StructName: recvType,
			Method:     fd.Name.Name,
			File:       filepath.ToSlash(relFile),
			Line:       fset.Position(fd.Pos()).Line,
		}
		repoFields := map[string]bool{}
		aggMethods := map[string]bool{}
		ast.Inspect(fd.Body, func(n ast.Node) bool {
			call, ok := n.(*ast.CallExpr)
			if !ok {
				return true
			}
			fnSel, ok := call.Fun.(*ast.SelectorExpr)
			if !ok {
				return true
			}
			rcvSel, ok := fnSel.X.(*ast.SelectorExpr)
			if !ok {
				return true
			}
			base, ok := rcvSel.X.(*ast.Ident)
			if !ok || base.Name != recvName {
				return true
			}
			field, method := rcvSel.Sel.Name, fnSel.Sel.Name
			if _, ok := sf.RepoFields[field]; ok && repoWriteMethods[method] {
				m.RepoWriteCalls++
				repoFields[field] = true
			}
			if _, ok := sf.AggregateFields[field]; ok && aggregateWriteMethods[method] {
				m.AggregateWriteCalls++
				aggMethods[method] = true
			}
			return true
		})
		m.RepoFieldsWritten = sortedKeys(repoFields)
		m.AggregateMethodsObserved = sortedKeys(aggMethods)
		*out = append(*out, m)
	}
}

func buildReport(methods []methodStats) report {
	sort.Slice(methods, func(i, j int) bool {
		if methods[i].File == methods[j].File {
			return methods[i].Line < methods[j].Line
		}
		return methods[i].File < methods[j].File
	})
	rep := report{Methods: methods}
	for _, m := range methods {
		rep.RepoWriteCallsites += m.RepoWriteCalls
		rep.AggregateWriteCallsites += m.AggregateWriteCalls
		if m.RepoWriteCalls > 0 {
			rep.Residual = append(rep.Residual, m)
		}
	}
	return rep
}

func recvInfo(field *ast.Field) (string, string) {
	if field == nil || len(field.Names) == 0 {
		return "", ""
	}
	recvName := field.Names[0].Name
	switch t := field.Type.(type) {
	case *ast.StarExpr:
		if id, ok := t.X.(*ast.Ident); ok {
			return recvName, id.Name
		}
	case *ast.Ident:
		return recvName, t.Name
	}
	return "", ""
}

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func exitf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
