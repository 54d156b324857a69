package tools

import (
	"fmt"
	"reflect"

	"github.com/xuri/excelize/v2"
)

// ExportToExcel 将结构体切片写入指定 sheet，列名取自 excel 标签
func ExportToExcel(f *excelize.File, sheet string, data interface{}) error {
	v := reflect.ValueOf(data)
	if v.Kind() != reflect.Slice {
		return fmt.Errorf("data %v 不是切片", data)
	}
	if v.Len() == 0 {
		return nil
	}

	elemType := v.Index(0).Type()
	if elemType.Kind() == reflect.Ptr {
		elemType = elemType.Elem()
	}
	if elemType.Kind() != reflect.Struct {
		return fmt.Errorf("data %v 不是结构体切片", data)
	}

	if sheet == "" {
		sheet = "Sheet1"
	}
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	cols := []int{}
	headers := []string{}

	for i := 0; i < elemType.NumField(); i++ {
		field := elemType.Field(i)
		tag := field.Tag.Get("excel")
		if tag == "-" {
			continue
		}
		if tag == "" {
			tag = field.Name
		}
		cols = append(cols, i)
		headers = append(headers, tag)
		cell, err := excelize.CoordinatesToCellName(len(headers), 1)
		if err != nil {
			return err
		}
		if err = f.SetCellValue(sheet, cell, tag); err != nil {
			return err
		}
	}

	for row := 0; row < v.Len(); row++ {
		elem := v.Index(row)
		if elem.Kind() == reflect.Ptr {
			elem = elem.Elem()
		}
		for colIndex, fieldIndex := range cols {
			value := elem.Field(fieldIndex).Interface()
			cell, _ := excelize.CoordinatesToCellName(colIndex+1, row+2)
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return err
			}
		}
	}
	return nil
}
