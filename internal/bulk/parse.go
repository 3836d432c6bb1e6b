// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package bulk

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"autoblog/internal/apperr"
)

// TitleColumn is the header of the column holding post titles.
const TitleColumn = "Title"

// ParseTitles reads post titles from an uploaded spreadsheet. The format is
// chosen by the file extension: .xlsx uses the first sheet, .csv is read as
// comma-separated values. The first row must contain a Title column
// (matched case-insensitively). Blank titles are skipped.
func ParseTitles(filename string, r io.Reader) ([]string, error) {
	var (
		rows [][]string
		err  error
	)
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx", ".xlsm":
		rows, err = readWorkbook(r)
	case ".csv":
		rows, err = readCSV(r)
	default:
		return nil, apperr.Validation("Unsupported file type, upload an .xlsx or .csv file")
	}
	if err != nil {
		return nil, err
	}
	return titles(rows)
}

func readWorkbook(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, &apperr.Error{Kind: apperr.KindValidation, Msg: "Could not read spreadsheet", Err: err}
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, apperr.Validation("Spreadsheet has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, &apperr.Error{Kind: apperr.KindValidation, Msg: "Could not read spreadsheet", Err: err}
	}
	return rows, nil
}

func readCSV(r io.Reader) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	var rows [][]string
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return rows, nil
		}
		if err != nil {
			return nil, &apperr.Error{Kind: apperr.KindValidation, Msg: "Could not read CSV", Err: err}
		}
		rows = append(rows, rec)
	}
}

func titles(rows [][]string) ([]string, error) {
	if len(rows) == 0 {
		return nil, apperr.Validation("File is empty")
	}

	col := -1
	for i, h := range rows[0] {
		if strings.EqualFold(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")), TitleColumn) {
			col = i
			break
		}
	}
	if col < 0 {
		return nil, apperr.Validation(fmt.Sprintf("Missing %q column", TitleColumn))
	}

	var out []string
	for _, row := range rows[1:] {
		if col >= len(row) {
			continue
		}
		if t := strings.TrimSpace(row[col]); t != "" {
			out = append(out, t)
		}
	}
	return out, nil
}
