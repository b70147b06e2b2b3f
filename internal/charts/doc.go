// Package charts draws the chart series of a report as PNG images with
// gonum/plot. Bar charts and grouped bar charts use nominal x axes; scatter
// charts add the least squares trend line carried by the series.
//
// Undefined values are drawn as zero-height bars and are left out of
// scatter plots.
package charts
