// Package spreadsheet reads entity names from an uploaded workbook and writes
// normalized registry records back as an xlsx workbook.
package spreadsheet
