/*
 *   Copyright 2023 Martin Proffitt <mproffitt@choclab.net>
 *
 *  Licensed under the Apache License, Version 2.0 (the "License");
 *  you may not use this file except in compliance with the License.
 *  You may obtain a copy of the License at
 *
 *      http://www.apache.org/licenses/LICENSE-2.0
 *
 *  Unless required by applicable law or agreed to in writing, software
 *  distributed under the License is distributed on an "AS IS" BASIS,
 *  WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 *  See the License for the specific language governing permissions and
 *  limitations under the License.
 */
package types

const (
	AesCfb256_Legacy CipherType = 0
	AesGcm256        CipherType = 1
	KDFTypePBKDF2    KDFType    = 0
	KDFTypeArgon2id  KDFType    = 1
	KDFTypeNone      KDFType    = 255
)

const (
	_ KeyMode = iota
	KeyModePassword
	KeyModeKeystore
)

const (
	MAGIC          = "SSTR"
	FORMAT_VERSION = 1

	KEY_SIZE    = 32
	SALT_SIZE   = 16
	IV_SIZE     = 16
	TAG_SIZE    = 16
	HEADER_SIZE = len(MAGIC) + 1 + 1 + 1 + 1 + 4 + 4 + 1 + SALT_SIZE + 16 + IV_SIZE

	LEGACY_ITERATIONS = 100000

	// Upper bounds on KDF work so a damaged header cannot stall a read
	MAX_PBKDF2_ITERATIONS = 10000000
	MAX_ARGON2_ITERATIONS = 64
	MAX_ARGON2_MEMORY     = 1024
)
