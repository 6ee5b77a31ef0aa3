// Package files finds datapulse inputs on disk.
//
// Discovery lists archives and tables in a directory and expands command
// arguments, where a directory stands for every .zip archive inside it, into
// an ordered list of archive paths.
//
//	d := files.NewDiscovery("")
//	archives, err := d.ExpandArchives("data/logs")
package files
