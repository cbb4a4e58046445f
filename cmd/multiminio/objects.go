package main

import (
	"fmt"
	"io"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/spf13/cobra"
)

func newLsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ls [BUCKET [PREFIX]]",
		Short: "List buckets, or objects in a bucket",
		Args:  cobra.RangeArgs(0, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			mc, logger, err := a.client(nil)
			if err != nil {
				return err
			}
			defer logger.Sync()
			out := cmd.OutOrStdout()

			if len(args) == 0 {
				buckets, err := mc.ListBuckets(cmd.Context())
				if err != nil {
					return err
				}
				for _, b := range buckets {
					fmt.Fprintf(out, "%s  %s/\n", b.CreationDate.Format(time.RFC3339), b.Name)
				}
				return nil
			}

			recursive, _ := cmd.Flags().GetBool("recursive")
			opts := minio.ListObjectsOptions{Recursive: recursive}
			if len(args) == 2 {
				opts.Prefix = args[1]
			}
			for obj := range mc.ListObjects(cmd.Context(), args[0], opts) {
				if obj.Err != nil {
					return obj.Err
				}
				fmt.Fprintf(out, "%s  %10d  %s\n", obj.LastModified.Format(time.RFC3339), obj.Size, obj.Key)
			}
			return nil
		},
	}
	cmd.Flags().BoolP("recursive", "r", false, "list recursively")
	return cmd
}

func newStatCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stat BUCKET OBJECT",
		Short: "Show object metadata",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			mc, logger, err := a.client(nil)
			if err != nil {
				return err
			}
			defer logger.Sync()

			info, err := mc.StatObject(cmd.Context(), args[0], args[1], minio.StatObjectOptions{})
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Name:          %s\n", info.Key)
			fmt.Fprintf(out, "Size:          %d\n", info.Size)
			fmt.Fprintf(out, "ETag:          %s\n", info.ETag)
			fmt.Fprintf(out, "Content-Type:  %s\n", info.ContentType)
			fmt.Fprintf(out, "Last-Modified: %s\n", info.LastModified.Format(time.RFC3339))
			fmt.Fprintf(out, "Endpoint:      %s\n", mc.EndpointURL())
			return nil
		},
	}
}

func newGetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get BUCKET OBJECT [FILE]",
		Short: "Download an object to FILE, or to stdout",
		Args:  cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			mc, logger, err := a.client(nil)
			if err != nil {
				return err
			}
			defer logger.Sync()

			if len(args) == 3 {
				return mc.FGetObject(cmd.Context(), args[0], args[1], args[2], minio.GetObjectOptions{})
			}

			obj, err := mc.GetObject(cmd.Context(), args[0], args[1], minio.GetObjectOptions{})
			if err != nil {
				return err
			}
			defer obj.Close()
			_, err = io.Copy(cmd.OutOrStdout(), obj)
			return err
		},
	}
}

func newPutCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "put BUCKET OBJECT FILE",
		Short: "Upload FILE, or stdin when FILE is -",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			mc, logger, err := a.client(nil)
			if err != nil {
				return err
			}
			defer logger.Sync()

			contentType, _ := cmd.Flags().GetString("content-type")
			opts := minio.PutObjectOptions{ContentType: contentType}

			var info minio.UploadInfo
			if args[2] == "-" {
				// stdin cannot be rewound, so the upload is not failed over
				info, err = mc.PutObject(cmd.Context(), args[0], args[1], cmd.InOrStdin(), -1, opts)
			} else {
				info, err = mc.FPutObject(cmd.Context(), args[0], args[1], args[2], opts)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s/%s  %d bytes  etag %s\n", info.Bucket, info.Key, info.Size, info.ETag)
			return nil
		},
	}
	cmd.Flags().String("content-type", "", "content type of the object")
	return cmd
}

func newRmCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rm BUCKET OBJECT",
		Short: "Remove an object",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			mc, logger, err := a.client(nil)
			if err != nil {
				return err
			}
			defer logger.Sync()

			return mc.RemoveObject(cmd.Context(), args[0], args[1], minio.RemoveObjectOptions{})
		},
	}
}
