// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package gsheets

import (
	"context"
	"fmt"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

const (
	spreadsheetQuery = "mimeType='application/vnd.google-apps.spreadsheet' and trashed=false"
	filePageSize     = 100
	valueInputRaw    = "RAW"
)

// fileInfo is one spreadsheet file.
type fileInfo struct {
	ID    string
	Title string
	URL   string
}

// rangeValue is a single-cell write.
type rangeValue struct {
	Range string
	Value string
}

// backend is the remote surface used by Source.
type backend interface {
	listSpreadsheets(ctx context.Context) ([]fileInfo, error)
	worksheetTitles(ctx context.Context, spreadsheetID string) ([]string, error)
	values(ctx context.Context, spreadsheetID, a1 string) ([][]string, error)
	updateValues(ctx context.Context, spreadsheetID string, updates []rangeValue) error
}

// googleBackend calls the Drive and Sheets APIs.
type googleBackend struct {
	drive  *drive.Service
	sheets *sheets.Service
}

func newGoogleBackend(ctx context.Context, credentials *Credentials, extra ...option.ClientOption) (*googleBackend, error) {
	options := append([]option.ClientOption{
		option.WithCredentialsJSON(credentials.JSON),
		option.WithScopes(sheets.SpreadsheetsScope, drive.DriveReadonlyScope),
	}, extra...)

	driveService, err := drive.NewService(ctx, options...)
	if err != nil {
		return nil, fmt.Errorf("creating drive client: %w", err)
	}
	sheetsService, err := sheets.NewService(ctx, options...)
	if err != nil {
		return nil, fmt.Errorf("creating sheets client: %w", err)
	}
	return &googleBackend{drive: driveService, sheets: sheetsService}, nil
}

func (b *googleBackend) listSpreadsheets(ctx context.Context) ([]fileInfo, error) {
	var files []fileInfo
	pageToken := ""
	for {
		call := b.drive.Files.List().
			Q(spreadsheetQuery).
			Fields("nextPageToken, files(id, name, webViewLink)").
			PageSize(filePageSize).
			Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}
		list, err := call.Do()
		if err != nil {
			return nil, err
		}
		for _, file := range list.Files {
			files = append(files, fileInfo{ID: file.Id, Title: file.Name, URL: file.WebViewLink})
		}
		if list.NextPageToken == "" {
			return files, nil
		}
		pageToken = list.NextPageToken
	}
}

func (b *googleBackend) worksheetTitles(ctx context.Context, spreadsheetID string) ([]string, error) {
	document, err := b.sheets.Spreadsheets.Get(spreadsheetID).
		Fields("sheets.properties.title").
		Context(ctx).
		Do()
	if err != nil {
		return nil, err
	}
	titles := make([]string, 0, len(document.Sheets))
	for _, sheet := range document.Sheets {
		if sheet.Properties != nil {
			titles = append(titles, sheet.Properties.Title)
		}
	}
	return titles, nil
}

func (b *googleBackend) values(ctx context.Context, spreadsheetID, a1 string) ([][]string, error) {
	response, err := b.sheets.Spreadsheets.Values.Get(spreadsheetID, a1).Context(ctx).Do()
	if err != nil {
		return nil, err
	}
	grid := make([][]string, len(response.Values))
	for rowIndex, row := range response.Values {
		cells := make([]string, len(row))
		for columnIndex, value := range row {
			cells[columnIndex] = fmt.Sprint(value)
		}
		grid[rowIndex] = cells
	}
	return grid, nil
}

func (b *googleBackend) updateValues(ctx context.Context, spreadsheetID string, updates []rangeValue) error {
	if len(updates) == 1 {
		_, err := b.sheets.Spreadsheets.Values.Update(spreadsheetID, updates[0].Range, &sheets.ValueRange{
			Values: [][]interface{}{{updates[0].Value}},
		}).ValueInputOption(valueInputRaw).Context(ctx).Do()
		return err
	}
	request := &sheets.BatchUpdateValuesRequest{ValueInputOption: valueInputRaw}
	for _, update := range updates {
		request.Data = append(request.Data, &sheets.ValueRange{
			Range:  update.Range,
			Values: [][]interface{}{{update.Value}},
		})
	}
	_, err := b.sheets.Spreadsheets.Values.BatchUpdate(spreadsheetID, request).Context(ctx).Do()
	return err
}
