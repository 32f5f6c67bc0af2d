package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/catalogforge/imgingest/upload/storage"
	"github.com/spf13/cobra"
)

var azureAccountName, azureAccountKey, azureContainer, azureBaseURL string

func UploadCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "upload",
		Short: "Manage file upload backends",
	}
	var backend, bucket, region, accessKey, secretKey, endpoint string
	var forcePathStyle bool
	var credentialsFile, projectID, gcsBaseURL string
	cmd.PersistentFlags().StringVar(&backend, "backend", "s3", "Storage backend (s3, gcs, azure)")
	cmd.PersistentFlags().StringVar(&bucket, "bucket", "", "Bucket name (required)")
	cmd.PersistentFlags().StringVar(&region, "region", "", "Region (required for S3)")
	cmd.PersistentFlags().StringVar(&accessKey, "access-key", "", "Access key ID (optional, S3)")
	cmd.PersistentFlags().StringVar(&secretKey, "secret-key", "", "Secret access key (optional, S3)")
	cmd.PersistentFlags().StringVar(&endpoint, "endpoint", "", "Custom endpoint (optional, S3)")
	cmd.PersistentFlags().BoolVar(&forcePathStyle, "force-path-style", false, "Use path-style addressing (S3-compatible)")
	cmd.PersistentFlags().StringVar(&credentialsFile, "credentials-file", "", "Path to GCS service account JSON (optional, GCS)")
	cmd.PersistentFlags().StringVar(&projectID, "project-id", "", "GCP project ID (optional, GCS)")
	cmd.PersistentFlags().StringVar(&gcsBaseURL, "gcs-base-url", "", "Custom base URL for GCS public access (optional)")
	cmd.PersistentFlags().StringVar(&azureAccountName, "azure-account", os.Getenv("AZURE_STORAGE_ACCOUNT"), "Azure storage account name")
	cmd.PersistentFlags().StringVar(&azureAccountKey, "azure-key", os.Getenv("AZURE_STORAGE_KEY"), "Azure storage account key")
	cmd.PersistentFlags().StringVar(&azureContainer, "azure-container", os.Getenv("AZURE_STORAGE_CONTAINER"), "Azure blob container name")
	cmd.PersistentFlags().StringVar(&azureBaseURL, "azure-base-url", "", "Custom Azure blob base URL (optional)")
	var expiration string
	cmd.PersistentFlags().StringVar(&expiration, "expiration", "1h", "Expiration time for pre-signed URLs (e.g., 1h, 30m, 24h)")

	newBackend := func() (storage.Storage, error) {
		switch backend {
		case "s3":
			if bucket == "" || region == "" {
				return nil, fmt.Errorf("--bucket and --region are required for S3 backend")
			}
			return storage.NewS3(storage.S3Config{
				Bucket:          bucket,
				Region:          region,
				AccessKeyID:     accessKey,
				SecretAccessKey: secretKey,
				Endpoint:        endpoint,
				ForcePathStyle:  forcePathStyle,
			})
		case "gcs":
			if bucket == "" {
				return nil, fmt.Errorf("--bucket is required for GCS backend")
			}
			return storage.NewGCS(storage.GCSConfig{
				Bucket:          bucket,
				ProjectID:       projectID,
				CredentialsFile: credentialsFile,
				BaseURL:         gcsBaseURL,
			})
		case "azure":
			if azureContainer == "" {
				return nil, fmt.Errorf("--azure-container is required for Azure backend")
			}
			return storage.NewAzureBlob(storage.AzureConfig{
				AccountName: azureAccountName,
				AccountKey:  azureAccountKey,
				Container:   azureContainer,
				BaseURL:     azureBaseURL,
			})
		default:
			return nil, fmt.Errorf("supported backends: s3, gcs, azure")
		}
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "verify-credentials",
		Short: "Verify credentials for a storage backend",
		Run: func(cmd *cobra.Command, args []string) {
			stor, err := newBackend()
			if err != nil {
				fmt.Println(err)
				return
			}
			info, err := stor.GetBucketInfo()
			if err != nil {
				fmt.Printf("Failed to access bucket: %v\n", err)
				return
			}
			fmt.Printf("%s credentials and bucket access verified.\n", backend)
			fmt.Printf("Bucket info: %v\n", info)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "list-files",
		Short: "List files in a storage backend",
		Run: func(cmd *cobra.Command, args []string) {
			stor, err := newBackend()
			if err != nil {
				fmt.Println(err)
				return
			}
			defer stor.Close()

			files, err := stor.ListFiles()
			if err != nil {
				fmt.Printf("Failed to list files: %v\n", err)
				return
			}

			if len(files) == 0 {
				fmt.Println("No files found.")
				return
			}

			fmt.Printf("Found %d files:\n", len(files))
			for _, file := range files {
				size, err := stor.GetSize(file)
				if err != nil {
					fmt.Printf("  %s (size unknown)\n", file)
				} else {
					fmt.Printf("  %s (%s)\n", file, FormatBytes(size))
				}
			}
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "upload-file [file]",
		Short: "Upload a file to storage backend",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			filePath := args[0]

			if _, err := os.Stat(filePath); os.IsNotExist(err) {
				fmt.Printf("File not found: %s\n", filePath)
				return
			}

			stor, err := newBackend()
			if err != nil {
				fmt.Println(err)
				return
			}
			defer stor.Close()

			file, err := os.Open(filePath)
			if err != nil {
				fmt.Printf("Failed to open file: %v\n", err)
				return
			}
			defer file.Close()

			fileName := filepath.Base(filePath)
			fmt.Printf("Uploading %s...\n", fileName)

			key, err := stor.Store(fileName, file)
			if err != nil {
				fmt.Printf("Failed to upload file: %v\n", err)
				return
			}

			fmt.Printf("File uploaded successfully.\n")
			fmt.Printf("Key: %s\n", key)
			fmt.Printf("URL: %s\n", stor.GetURL(key))
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "generate-url [file]",
		Short: "Generate a pre-signed URL for file access",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			fileName := args[0]

			expiration := 1 * time.Hour
			if expirationStr := cmd.Flag("expiration").Value.String(); expirationStr != "" {
				var err error
				expiration, err = time.ParseDuration(expirationStr)
				if err != nil {
					fmt.Printf("Invalid expiration format: %v\n", err)
					return
				}
			}

			stor, err := newBackend()
			if err != nil {
				fmt.Println(err)
				return
			}
			defer stor.Close()

			if !stor.Exists(fileName) {
				fmt.Printf("File not found: %s\n", fileName)
				return
			}

			signedURL, err := stor.GetSignedURL(fileName, expiration)
			if err != nil {
				fmt.Printf("Failed to generate signed URL: %v\n", err)
				return
			}

			fmt.Printf("Pre-signed URL for %s (expires in %s):\n", fileName, expiration)
			fmt.Println(signedURL)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "delete-file [file]",
		Short: "Delete a file from storage backend",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			fileName := args[0]

			stor, err := newBackend()
			if err != nil {
				fmt.Println(err)
				return
			}
			defer stor.Close()

			if !stor.Exists(fileName) {
				fmt.Printf("File not found: %s\n", fileName)
				return
			}

			if err := stor.Delete(fileName); err != nil {
				fmt.Printf("Failed to delete file: %v\n", err)
				return
			}

			fmt.Printf("File %s deleted successfully.\n", fileName)
		},
	})

	return cmd
}

func FormatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
