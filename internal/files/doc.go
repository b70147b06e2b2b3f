// Package files takes stock of the report inputs on disk: the five
// datasets and the static map images. It only stats files; reading and
// validating their content is the dataset loader's job.
package files
