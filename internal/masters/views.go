package masters

import (
	"net/url"
	"strconv"

	"github.com/finoracle/backoffice/internal/gateway"
	"github.com/finoracle/backoffice/internal/listview"
	"github.com/finoracle/backoffice/internal/refdata"
	"github.com/finoracle/backoffice/internal/shared"
)

// EmptyText is shown when a page has no rows.
const EmptyText = "No results match your search query"

const pageWindow = 5

type link struct {
	Href     string
	Fragment string
}

type headerView struct {
	Key       string
	Title     string
	Sortable  bool
	Active    bool
	Direction listview.Direction
	Link      link
}

type pageView struct {
	Number  int
	Current bool
	Link    link
}

type sizeView struct {
	Size     int
	Selected bool
}

type tableView struct {
	Slug       string
	Base       string
	Headers    []headerView
	Rows       [][]string
	EmptyText  string
	Pagination shared.Pagination
	Summary    string
	Pages      []pageView
	Prev       *link
	Next       *link
	Sizes      []sizeView
	State      listview.State
	Source     gateway.Source
	Sequence   int64
}

type listPage struct {
	Title    string
	Singular string
	Base     string
	Table    tableView
}

type exportPage struct {
	Title string
	Table tableView
}

type fieldView struct {
	Field
	ID       string
	Input    string
	Value    string
	Checked  bool
	Options  []refdata.Option
	Error    string
	RowsView []rowView
}

type rowView struct {
	Index int
	Cells []fieldView
}

type formView struct {
	Title       string
	Singular    string
	Action      string
	Base        string
	Fields      []fieldView
	Errors      map[string]string
	Alert       string
	SubmitToken string
	Partial     bool
}

func linkFor(base string, state listview.State, mutate func(listview.State) listview.State) link {
	return link{
		Href:     state.Link(base, mutate),
		Fragment: state.Link(base+"/table", mutate),
	}
}

func buildFields(fields []Field, values url.Values, refs refdata.Set, errs map[string]string) []fieldView {
	views := make([]fieldView, 0, len(fields))
	for _, f := range fields {
		views = append(views, buildField(f, f.Name, values, refs, errs))
	}
	return views
}

func buildField(f Field, input string, values url.Values, refs refdata.Set, errs map[string]string) fieldView {
	fv := fieldView{
		Field: f,
		ID:    "f-" + input,
		Input: input,
		Value: values.Get(input),
		Error: errs[input],
	}
	switch f.Kind {
	case FieldCheckbox:
		fv.Checked = Checked(values, input)
	case FieldSelect:
		if f.List != "" {
			fv.Options = refs.Get(f.List)
		} else {
			fv.Options = f.Options
		}
	case FieldRows:
		rows := Rows(values, f.Name)
		if len(rows) == 0 {
			rows = []map[string]string{{}}
		}
		for i, row := range rows {
			rowValues := url.Values{}
			rv := rowView{Index: i}
			for _, sub := range f.Rows {
				name := f.Name + "." + strconv.Itoa(i) + "." + sub.Name
				rowValues.Set(name, row[sub.Name])
				rv.Cells = append(rv.Cells, buildField(sub, name, rowValues, refs, errs))
			}
			fv.RowsView = append(fv.RowsView, rv)
		}
		if fv.Error == "" {
			fv.Error = errs[f.Name]
		}
	}
	return fv
}
